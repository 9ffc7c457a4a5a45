package handlers

import (
	"finsignal/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SummaryHandler struct {
	summaryService *service.SummaryService
	logger         *zap.Logger
}

func NewSummaryHandler(summaryService *service.SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		logger:         logger,
	}
}

// GetSummary godoc
// @Summary Rolling income and expense averages
// @Tags summary
// @Produce json
// @Success 200 {object} dto.SummaryResponse
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	resp, err := h.summaryService.Summary(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build summary", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to build summary")
	}

	return c.JSON(resp)
}
