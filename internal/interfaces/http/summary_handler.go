package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tabel-bot/internal/application/dto"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/pkg/clock"
)

// SummaryHandler сводка по личному составу.
type SummaryHandler struct {
	reports *report.Service
	clock   clock.Clock
}

// NewSummaryHandler конструктор.
func NewSummaryHandler(reports *report.Service, clk clock.Clock) *SummaryHandler {
	return &SummaryHandler{reports: reports, clock: clk}
}

// GetSummary GET /api/summary
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	sum, err := h.reports.Summary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: "не удалось получить сводку",
		})
	}
	return c.JSON(dto.SummaryResponse{
		Total:          sum.Total,
		InUnit:         sum.InUnit,
		Away:           sum.Away,
		PresenceRate:   sum.PresenceRate,
		AwayByLocation: sum.AwayByLocation,
		GeneratedAt:    h.clock.Now(),
	})
}
