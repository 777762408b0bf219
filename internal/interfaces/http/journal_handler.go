package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tabel-bot/internal/application/dto"
	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// JournalHandler чтение журнала событий.
type JournalHandler struct {
	journal *journal.Service
}

// NewJournalHandler конструктор.
func NewJournalHandler(j *journal.Service) *JournalHandler {
	return &JournalHandler{journal: j}
}

// List GET /api/journal?period=today|week|month|all&name=&action=&limit=
func (h *JournalHandler) List(c *fiber.Ctx) error {
	var req dto.JournalRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
	}
	req.DefaultPage()
	period, err := journal.ParsePeriod(req.Period)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PERIOD", Message: "period: today, week, month или all"})
	}
	events, err := h.journal.List(c.Context(), entity.EventFilter{
		Period:       period,
		UserNameLike: req.Name,
		ActionLike:   req.Action,
	}, req.Limit)
	if err != nil {
		var se *domain.StoreError
		if errors.As(err, &se) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "хранилище недоступно"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.JournalResponse{Period: journal.PeriodTitle(period), Count: len(events), Events: make([]dto.EventResponse, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, dto.EventResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Actor:     e.Actor(),
			Action:    e.Action,
			Details:   e.Details,
			Timestamp: e.Timestamp,
		})
	}
	return c.JSON(out)
}
