package handlers

import (
	"errors"

	"finsignal/internal/dto"
	"finsignal/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReminderHandler struct {
	reminderService *service.ReminderService
	tokenService    *service.TokenService
	logger          *zap.Logger
}

func NewReminderHandler(reminderService *service.ReminderService, tokenService *service.TokenService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		tokenService:    tokenService,
		logger:          logger,
	}
}

// CreateReminder godoc
// @Summary Create a payment reminder
// @Description Reminders due today notify the creator's devices immediately
// @Tags reminders
// @Accept json
// @Produce json
// @Param request body dto.CreateReminderRequest true "Reminder"
// @Success 201 {object} dto.ReminderResponse
// @Router /api/v1/reminders [post]
func (h *ReminderHandler) CreateReminder(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.reminderService.Create(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReminder) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error("Failed to create reminder", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create reminder")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// RegisterToken godoc
// @Summary Register a device push token
// @Tags reminders
// @Accept json
// @Param request body dto.RegisterTokenRequest true "Token"
// @Success 204
// @Router /api/v1/tokens [post]
func (h *ReminderHandler) RegisterToken(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.RegisterTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.tokenService.Register(c.Context(), userID, req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error("Failed to register token", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to register token")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
