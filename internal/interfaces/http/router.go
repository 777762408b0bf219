package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/jwt"
)

// RouterDeps зависимости маршрутов API.
type RouterDeps struct {
	Reports   *report.Service
	Journal   *journal.Service
	Admins    adminChecker
	Perms     permissionChecker
	JWTSecret string
	Clock     clock.Clock
	Service   string
}

// Router регистрирует маршруты.
func Router(app *fiber.App, deps RouterDeps) {
	// Health (публичный, для keep-alive хостинга)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.Service, "time": deps.Clock.Now()})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleCommander))

	summaryHandler := NewSummaryHandler(deps.Reports, deps.Clock)
	api.Get("/summary", RequirePermission(entity.PermViewPersonnel, deps.Admins, deps.Perms), summaryHandler.GetSummary)

	journalHandler := NewJournalHandler(deps.Journal)
	api.Get("/journal", RequirePermission(entity.PermViewJournal, deps.Admins, deps.Perms), journalHandler.List)
}
