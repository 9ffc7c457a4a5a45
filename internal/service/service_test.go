package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsignal/internal/dto"
	"finsignal/internal/features"
	"finsignal/internal/models"
	"finsignal/internal/repository"
	"finsignal/internal/scheduler"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeExpenses struct {
	created     []*models.Expense
	feedback    map[uuid.UUID]*int16
	feedbackErr error
}

func (f *fakeExpenses) Create(ctx context.Context, e *models.Expense) error {
	f.created = append(f.created, e)
	return nil
}

func (f *fakeExpenses) SetFeedback(ctx context.Context, expenseID, userID uuid.UUID, feedback *int16) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	if f.feedback == nil {
		f.feedback = make(map[uuid.UUID]*int16)
	}
	f.feedback[expenseID] = feedback
	return nil
}

type fakeFeatures struct {
	records map[uuid.UUID]*models.FeatureRecord
	labels  map[uuid.UUID]*int16
}

func (f *fakeFeatures) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*models.FeatureRecord, error) {
	rec, ok := f.records[expenseID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeFeatures) SetLabel(ctx context.Context, expenseID uuid.UUID, label *int16) error {
	if f.labels == nil {
		f.labels = make(map[uuid.UUID]*int16)
	}
	f.labels[expenseID] = label
	return nil
}

type fakeTasks struct {
	submitted []features.Input
	err       error
}

func (f *fakeTasks) Submit(in features.Input) error {
	f.submitted = append(f.submitted, in)
	return f.err
}

func TestExpenseCreateQueuesFeatures(t *testing.T) {
	expenses := &fakeExpenses{}
	tasks := &fakeTasks{err: features.ErrQueueFull}
	svc := NewExpenseService(expenses, &fakeFeatures{}, tasks, zap.NewNop())
	user := uuid.New()
	shared := uuid.New()

	resp, err := svc.Create(context.Background(), user, &dto.CreateExpenseRequest{
		MacroCategory: "  🧾 Alimentos y bebidas ",
		Category:      "Supermercado",
		Amount:        decimal.RequireFromString("42.10"),
		SharedID:      shared.String(),
	})
	if err != nil {
		t.Fatalf("Create() error = %v (a full queue must not fail the write)", err)
	}

	if len(expenses.created) != 1 || len(tasks.submitted) != 1 {
		t.Fatalf("created=%d submitted=%d", len(expenses.created), len(tasks.submitted))
	}
	in := tasks.submitted[0]
	if in.ExpenseID.String() != resp.ID {
		t.Errorf("queued %s, responded %s", in.ExpenseID, resp.ID)
	}
	if in.UserID != user || in.SharedID == nil || *in.SharedID != shared {
		t.Errorf("queued input = %+v", in)
	}
	if in.MacroCategory != "🧾 Alimentos y bebidas" {
		t.Errorf("MacroCategory = %q", in.MacroCategory)
	}
}

func TestExpenseCreateValidates(t *testing.T) {
	svc := NewExpenseService(&fakeExpenses{}, &fakeFeatures{}, &fakeTasks{}, zap.NewNop())
	user := uuid.New()

	bad := []dto.CreateExpenseRequest{
		{MacroCategory: "x", Amount: decimal.RequireFromString("-5")},
		{MacroCategory: "  ", Amount: decimal.RequireFromString("5")},
		{MacroCategory: "x", Amount: decimal.RequireFromString("5"), SharedID: "nope"},
	}
	for _, req := range bad {
		if _, err := svc.Create(context.Background(), user, &req); !errors.Is(err, ErrInvalidExpense) {
			t.Errorf("Create(%+v) error = %v, want ErrInvalidExpense", req, err)
		}
	}
}

func TestExpenseCreateAcceptsZeroAmount(t *testing.T) {
	expenses := &fakeExpenses{}
	tasks := &fakeTasks{}
	svc := NewExpenseService(expenses, &fakeFeatures{}, tasks, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateExpenseRequest{
		MacroCategory: "x",
		Amount:        decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(expenses.created) != 1 || !expenses.created[0].Amount.IsZero() || len(tasks.submitted) != 1 {
		t.Errorf("created=%d submitted=%d", len(expenses.created), len(tasks.submitted))
	}
}

func TestExpenseSetFeedbackMirrorsLabel(t *testing.T) {
	expenses := &fakeExpenses{}
	feats := &fakeFeatures{}
	svc := NewExpenseService(expenses, feats, &fakeTasks{}, zap.NewNop())
	id := uuid.New()
	regret := models.FeedbackRegret

	if err := svc.SetFeedback(context.Background(), uuid.New(), id, &dto.FeedbackRequest{Feedback: &regret}); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}
	if got := feats.labels[id]; got == nil || *got != -1 {
		t.Errorf("label = %v, want -1", got)
	}

	invalid := int16(3)
	if err := svc.SetFeedback(context.Background(), uuid.New(), id, &dto.FeedbackRequest{Feedback: &invalid}); !errors.Is(err, ErrInvalidFeedback) {
		t.Errorf("error = %v, want ErrInvalidFeedback", err)
	}

	expenses.feedbackErr = repository.ErrNotFound
	if err := svc.SetFeedback(context.Background(), uuid.New(), uuid.New(), &dto.FeedbackRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestExpenseFeaturesChecksOwner(t *testing.T) {
	owner := uuid.New()
	expenseID := uuid.New()
	feats := &fakeFeatures{records: map[uuid.UUID]*models.FeatureRecord{
		expenseID: {
			ID:        uuid.New(),
			ExpenseID: expenseID,
			UserID:    owner,
			FeatureVector: models.FeatureVector{
				Amount:                 decimal.RequireFromString("10"),
				CategoryNecessityScore: 50,
			},
		},
	}}
	svc := NewExpenseService(&fakeExpenses{}, feats, &fakeTasks{}, zap.NewNop())

	resp, err := svc.Features(context.Background(), owner, expenseID)
	if err != nil {
		t.Fatalf("Features() error = %v", err)
	}
	if resp.CategoryNecessityScore != 50 || resp.ExpenseID != expenseID.String() {
		t.Errorf("resp = %+v", resp)
	}

	if _, err := svc.Features(context.Background(), uuid.New(), expenseID); !errors.Is(err, ErrNotFound) {
		t.Errorf("other user: error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Features(context.Background(), owner, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: error = %v, want ErrNotFound", err)
	}
}

type fakeHistory struct {
	expenses []models.ExpenseEntry
	incomes  []models.IncomeEntry
}

func (f *fakeHistory) PriorExpenses(ctx context.Context, scope repository.Scope, exclude uuid.UUID, until time.Time) ([]models.ExpenseEntry, error) {
	return f.expenses, nil
}

func (f *fakeHistory) PriorIncomes(ctx context.Context, scope repository.Scope, until time.Time) ([]models.IncomeEntry, error) {
	return f.incomes, nil
}

func TestSummaryUsesRollingWindow(t *testing.T) {
	now := time.Date(2026, time.May, 20, 12, 0, 0, 0, time.UTC)
	svc := NewSummaryService(&fakeHistory{
		incomes: []models.IncomeEntry{
			{Amount: decimal.RequireFromString("2000"), CreatedAt: now.AddDate(0, 0, -5)},
			{Amount: decimal.RequireFromString("9999"), CreatedAt: now.AddDate(0, -3, 0)},
		},
		expenses: []models.ExpenseEntry{
			{Amount: decimal.RequireFromString("500"), CreatedAt: now.AddDate(0, 0, -1)},
		},
	}, time.UTC)
	svc.now = func() time.Time { return now }

	resp, err := svc.Summary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !resp.MonthlyIncomeAvg.Equal(decimal.RequireFromString("2000")) {
		t.Errorf("MonthlyIncomeAvg = %s", resp.MonthlyIncomeAvg)
	}
	if !resp.SavingsRate.Equal(decimal.RequireFromString("0.75")) {
		t.Errorf("SavingsRate = %s", resp.SavingsRate)
	}
	if resp.IncomeMonths != 1 || resp.ExpenseMonths != 1 {
		t.Errorf("months = %d/%d", resp.IncomeMonths, resp.ExpenseMonths)
	}
}

type fakeReminders struct {
	created []*models.Reminder
}

func (f *fakeReminders) Create(ctx context.Context, rem *models.Reminder) error {
	f.created = append(f.created, rem)
	return nil
}

type fakeNotifier struct {
	got       []scheduler.NewReminder
	delivered int
	err       error
}

func (f *fakeNotifier) NotifyCreatedToday(ctx context.Context, r scheduler.NewReminder) (int, error) {
	f.got = append(f.got, r)
	return f.delivered, f.err
}

func TestReminderCreateTriggersImmediateCheck(t *testing.T) {
	store := &fakeReminders{}
	notifier := &fakeNotifier{delivered: 2, err: nil}
	svc := NewReminderService(store, notifier, zap.NewNop())
	user := uuid.New()

	resp, err := svc.Create(context.Background(), user, &dto.CreateReminderRequest{
		Name:            "Internet",
		Amount:          decimal.RequireFromString("35"),
		NextPaymentDate: "2026-05-20",
		Frequency:       "mensual",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(store.created) != 1 || len(notifier.got) != 1 {
		t.Fatalf("created=%d notified=%d", len(store.created), len(notifier.got))
	}
	if notifier.got[0].UserID != user || notifier.got[0].Name != "Internet" {
		t.Errorf("notifier got %+v", notifier.got[0])
	}
	if resp.NotifiedDevices != 2 || resp.NextPaymentDate != "2026-05-20" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestReminderCreateSurvivesNotifierError(t *testing.T) {
	svc := NewReminderService(&fakeReminders{}, &fakeNotifier{err: errors.New("db down")}, zap.NewNop())

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateReminderRequest{
		Name:            "Gym",
		Amount:          decimal.RequireFromString("20"),
		NextPaymentDate: "2026-05-20",
	})
	if err != nil {
		t.Errorf("Create() error = %v, want nil", err)
	}
}

func TestReminderCreateValidates(t *testing.T) {
	svc := NewReminderService(&fakeReminders{}, &fakeNotifier{}, zap.NewNop())
	bad := []dto.CreateReminderRequest{
		{Name: "", NextPaymentDate: "2026-05-20"},
		{Name: "Rent", NextPaymentDate: "20/05/2026"},
		{Name: "Rent", NextPaymentDate: "2026-05-20", Amount: decimal.RequireFromString("-1")},
	}
	for _, req := range bad {
		if _, err := svc.Create(context.Background(), uuid.New(), &req); !errors.Is(err, ErrInvalidReminder) {
			t.Errorf("Create(%+v) error = %v, want ErrInvalidReminder", req, err)
		}
	}
}

type fakeTokenStore map[string]uuid.UUID

func (f fakeTokenStore) Upsert(ctx context.Context, token string, userID uuid.UUID) error {
	f[token] = userID
	return nil
}

func TestTokenRegister(t *testing.T) {
	store := fakeTokenStore{}
	svc := NewTokenService(store)
	user := uuid.New()

	if err := svc.Register(context.Background(), user, " abc "); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if store["abc"] != user {
		t.Errorf("store = %v", store)
	}
	if err := svc.Register(context.Background(), user, "   "); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestCleanText(t *testing.T) {
	if got := cleanText(" ok\xff "); got != "ok" {
		t.Errorf("cleanText = %q", got)
	}
}
