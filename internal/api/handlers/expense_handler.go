package handlers

import (
	"errors"

	"finsignal/internal/dto"
	"finsignal/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// CreateExpense godoc
// @Summary Record an expense
// @Description Stores the expense and queues its feature computation
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.expenseService.Create(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidExpense) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error("Failed to create expense", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create expense")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SetFeedback godoc
// @Summary Rate an expense
// @Tags expenses
// @Accept json
// @Param id path string true "Expense ID"
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 204
// @Router /api/v1/expenses/{id}/feedback [patch]
func (h *ExpenseHandler) SetFeedback(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	expenseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid expense ID")
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.expenseService.SetFeedback(c.Context(), userID, expenseID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFeedback):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Expense not found")
		}
		h.logger.Error("Failed to set feedback", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to set feedback")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ExpenseHandler) GetFeatures(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	expenseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid expense ID")
	}

	resp, err := h.expenseService.Features(c.Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Features not found")
		}
		h.logger.Error("Failed to load features", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load features")
	}

	return c.JSON(resp)
}
