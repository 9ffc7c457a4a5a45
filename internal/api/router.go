package api

import (
	"time"

	"finsignal/internal/api/handlers"
	"finsignal/pkg/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Handlers struct {
	Expense  *handlers.ExpenseHandler
	Reminder *handlers.ReminderHandler
	Summary  *handlers.SummaryHandler
	Health   *handlers.HealthHandler
}

type ServerOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(h Handlers, opts ServerOptions, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.UserHeader,
	}))
	app.Use(middleware.RequestLogger(appLogger))

	app.Get("/health", h.Health.Health)

	api := app.Group("/api/v1", middleware.UserScope(appLogger))

	expenses := api.Group("/expenses")
	expenses.Post("", h.Expense.CreateExpense)
	expenses.Patch("/:id/feedback", h.Expense.SetFeedback)
	expenses.Get("/:id/features", h.Expense.GetFeatures)

	api.Get("/summary", h.Summary.GetSummary)
	api.Post("/reminders", h.Reminder.CreateReminder)
	api.Post("/tokens", h.Reminder.RegisterToken)

	return app
}
