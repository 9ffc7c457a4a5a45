package scheduler

import (
	"fmt"
	"time"

	"finsignal/internal/calendar"
	"finsignal/internal/models"
	"finsignal/internal/policy"

	"github.com/shopspring/decimal"
)

// Tier classifies a reminder by how its payment date relates to today.
type Tier int

const (
	TierBefore Tier = iota
	TierDue
	TierOverdue
)

func (t Tier) String() string {
	switch t {
	case TierBefore:
		return "before"
	case TierDue:
		return "due"
	case TierOverdue:
		return "overdue"
	default:
		return "unknown"
	}
}

// DefaultHours are the evaluation instants, each at minute 0.
var DefaultHours = []int{9, 13, 17, 18}

// tierHours are the hours at which each tier may fire.
var tierHours = map[Tier][]int{
	TierBefore:  {9},
	TierDue:     {9, 17},
	TierOverdue: {9, 13, 18},
}

func ClassifyDays(diffDays int) Tier {
	switch {
	case diffDays > 0:
		return TierBefore
	case diffDays == 0:
		return TierDue
	default:
		return TierOverdue
	}
}

// Decision is what should happen for one reminder at one instant.
type Decision struct {
	Tier     Tier
	DiffDays int
	Fire     bool
	Title    string
	Body     string
}

// Evaluate decides whether target fires at now. It only looks at its
// arguments, so the whole escalation table can be tested with fixed instants.
func Evaluate(target models.ReminderTarget, now time.Time, pol *policy.Policy, loc *time.Location) Decision {
	if loc == nil {
		loc = time.UTC
	}
	if pol == nil {
		pol = policy.Default()
	}
	local := now.In(loc)

	diff := calendar.DaysBetween(calendar.Midnight(local, loc), calendar.DateOnly(target.NextPaymentDate, loc))
	d := Decision{Tier: ClassifyDays(diff), DiffDays: diff}

	if !containsHour(tierHours[d.Tier], local.Hour()) {
		return d
	}

	amount := formatAmount(target.Amount)
	switch d.Tier {
	case TierBefore:
		if diff > pol.Lookahead(target.Frequency) {
			return d
		}
		d.Title = "⏳ Upcoming payment"
		d.Body = fmt.Sprintf("Your payment for %s (%s) is due in %s.", target.Name, amount, days(diff))
	case TierDue:
		d.Title = "🔔 Due today"
		d.Body = fmt.Sprintf("Your payment for %s (%s) is due today.", target.Name, amount)
	case TierOverdue:
		d.Title = "⚠️ Payment overdue"
		d.Body = fmt.Sprintf("Your payment for %s (%s) is overdue by %s.", target.Name, amount, days(-diff))
	}
	d.Fire = true
	return d
}

// createdTodayMessage is sent when a reminder is created for the current day.
func createdTodayMessage(name string, amount decimal.Decimal) (string, string) {
	return "🔔 New reminder", fmt.Sprintf("Due today: %s (%s)", name, formatAmount(amount))
}

func formatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func containsHour(hours []int, h int) bool {
	for _, x := range hours {
		if x == h {
			return true
		}
	}
	return false
}
