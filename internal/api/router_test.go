package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finsignal/internal/api/handlers"
	"finsignal/internal/features"
	"finsignal/internal/models"
	"finsignal/internal/repository"
	"finsignal/internal/scheduler"
	"finsignal/internal/service"
	"finsignal/pkg/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memLedger struct {
	expenses map[uuid.UUID]*models.Expense
	features map[uuid.UUID]*models.FeatureRecord
	queued   []features.Input
	tokens   map[string]uuid.UUID
	reminder []*models.Reminder
}

func newMemLedger() *memLedger {
	return &memLedger{
		expenses: make(map[uuid.UUID]*models.Expense),
		features: make(map[uuid.UUID]*models.FeatureRecord),
		tokens:   make(map[string]uuid.UUID),
	}
}

func (m *memLedger) Create(ctx context.Context, e *models.Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m *memLedger) SetFeedback(ctx context.Context, expenseID, userID uuid.UUID, feedback *int16) error {
	e, ok := m.expenses[expenseID]
	if !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	e.UserFeedback = feedback
	return nil
}

func (m *memLedger) GetByExpenseID(ctx context.Context, expenseID uuid.UUID) (*models.FeatureRecord, error) {
	rec, ok := m.features[expenseID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (m *memLedger) SetLabel(ctx context.Context, expenseID uuid.UUID, label *int16) error {
	if rec, ok := m.features[expenseID]; ok {
		rec.Label = label
	}
	return nil
}

func (m *memLedger) Submit(in features.Input) error {
	m.queued = append(m.queued, in)
	return nil
}

func (m *memLedger) PriorExpenses(ctx context.Context, scope repository.Scope, exclude uuid.UUID, until time.Time) ([]models.ExpenseEntry, error) {
	return nil, nil
}

func (m *memLedger) PriorIncomes(ctx context.Context, scope repository.Scope, until time.Time) ([]models.IncomeEntry, error) {
	return nil, nil
}

func (m *memLedger) Upsert(ctx context.Context, token string, userID uuid.UUID) error {
	m.tokens[token] = userID
	return nil
}

type reminderStore struct{ m *memLedger }

func (r reminderStore) Create(ctx context.Context, rem *models.Reminder) error {
	r.m.reminder = append(r.m.reminder, rem)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyCreatedToday(ctx context.Context, r scheduler.NewReminder) (int, error) {
	return 0, nil
}

func newTestApp(m *memLedger) *fiber.App {
	log := zap.NewNop()
	expenseSvc := service.NewExpenseService(m, m, m, log)
	return SetupRouter(Handlers{
		Expense:  handlers.NewExpenseHandler(expenseSvc, log),
		Reminder: handlers.NewReminderHandler(service.NewReminderService(reminderStore{m}, noopNotifier{}, log), service.NewTokenService(m), log),
		Summary:  handlers.NewSummaryHandler(service.NewSummaryService(m, time.UTC), log),
		Health:   handlers.NewHealthHandler(nil, nil),
	}, ServerOptions{}, log)
}

func do(t *testing.T, app *fiber.App, method, path, user, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(middleware.UserHeader, user)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func TestHealthIsPublic(t *testing.T) {
	status, body := do(t, newTestApp(newMemLedger()), http.MethodGet, "/health", "", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("status=%d body=%s", status, body)
	}
}

func TestAPIRequiresUser(t *testing.T) {
	status, _ := do(t, newTestApp(newMemLedger()), http.MethodGet, "/api/v1/summary", "", "")
	if status != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}

func TestCreateExpenseQueuesFeatures(t *testing.T) {
	m := newMemLedger()
	app := newTestApp(m)
	user := uuid.New().String()

	status, body := do(t, app, http.MethodPost, "/api/v1/expenses", user,
		`{"macrocategoria":"🧾 Alimentos y bebidas","categoria":"Cafe","total_amount":"4.50"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status=%d body=%s", status, body)
	}

	var resp struct {
		ID string `json:"expense_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m.queued) != 1 || m.queued[0].ExpenseID.String() != resp.ID {
		t.Errorf("queued = %+v, response id %s", m.queued, resp.ID)
	}

	status, _ = do(t, app, http.MethodPost, "/api/v1/expenses", user, `{"macrocategoria":"x","total_amount":0}`)
	if status != fiber.StatusCreated {
		t.Errorf("zero amount: status = %d, want 201", status)
	}

	status, _ = do(t, app, http.MethodPost, "/api/v1/expenses", user, `{"macrocategoria":"x","total_amount":-1}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("negative amount: status = %d, want 400", status)
	}
}

func TestFeedbackAndFeatures(t *testing.T) {
	m := newMemLedger()
	app := newTestApp(m)
	owner := uuid.New()
	expenseID := uuid.New()
	m.expenses[expenseID] = &models.Expense{ID: expenseID, UserID: owner}
	m.features[expenseID] = &models.FeatureRecord{ID: uuid.New(), ExpenseID: expenseID, UserID: owner}

	path := "/api/v1/expenses/" + expenseID.String()

	if status, _ := do(t, app, http.MethodPatch, path+"/feedback", owner.String(), `{"user_feedback":1}`); status != fiber.StatusNoContent {
		t.Errorf("feedback status = %d, want 204", status)
	}
	if l := m.features[expenseID].Label; l == nil || *l != 1 {
		t.Errorf("label = %v, want 1", l)
	}
	if status, _ := do(t, app, http.MethodPatch, path+"/feedback", owner.String(), `{"user_feedback":2}`); status != fiber.StatusBadRequest {
		t.Errorf("invalid feedback status = %d, want 400", status)
	}
	if status, _ := do(t, app, http.MethodPatch, path+"/feedback", uuid.New().String(), `{"user_feedback":0}`); status != fiber.StatusNotFound {
		t.Errorf("foreign feedback status = %d, want 404", status)
	}

	status, body := do(t, app, http.MethodGet, path+"/features", owner.String(), "")
	if status != fiber.StatusOK || !strings.Contains(string(body), expenseID.String()) {
		t.Errorf("features status=%d body=%s", status, body)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/v1/expenses/"+uuid.New().String()+"/features", owner.String(), ""); status != fiber.StatusNotFound {
		t.Errorf("missing features status = %d, want 404", status)
	}
	if status, _ := do(t, app, http.MethodGet, "/api/v1/expenses/bad/features", owner.String(), ""); status != fiber.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", status)
	}
}

func TestRemindersAndTokens(t *testing.T) {
	m := newMemLedger()
	app := newTestApp(m)
	user := uuid.New()

	status, body := do(t, app, http.MethodPost, "/api/v1/reminders", user.String(),
		`{"reminder_name":"Rent","total_amount":900,"next_payment_date":"2026-06-01","payment_frequency":"mensual"}`)
	if status != fiber.StatusCreated || len(m.reminder) != 1 {
		t.Errorf("reminder status=%d body=%s", status, body)
	}

	if status, _ := do(t, app, http.MethodPost, "/api/v1/tokens", user.String(), `{"token":"device-1"}`); status != fiber.StatusNoContent {
		t.Errorf("token status = %d, want 204", status)
	}
	if m.tokens["device-1"] != user {
		t.Errorf("tokens = %v", m.tokens)
	}
	if status, _ := do(t, app, http.MethodPost, "/api/v1/tokens", user.String(), `{"token":""}`); status != fiber.StatusBadRequest {
		t.Errorf("empty token status = %d, want 400", status)
	}
}

func TestSummary(t *testing.T) {
	status, body := do(t, newTestApp(newMemLedger()), http.MethodGet, "/api/v1/summary", uuid.New().String(), "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"savings_rate":"-1"`) {
		t.Errorf("status=%d body=%s", status, body)
	}
}
