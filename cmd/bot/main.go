package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/tabel-bot/internal/application/attendance"
	"github.com/jhoicas/tabel-bot/internal/application/auth"
	"github.com/jhoicas/tabel-bot/internal/application/conversation"
	"github.com/jhoicas/tabel-bot/internal/application/journal"
	"github.com/jhoicas/tabel-bot/internal/application/notification"
	"github.com/jhoicas/tabel-bot/internal/application/permissions"
	"github.com/jhoicas/tabel-bot/internal/application/personnel"
	"github.com/jhoicas/tabel-bot/internal/application/report"
	"github.com/jhoicas/tabel-bot/internal/domain/repository"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/export"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/memory"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/postgres"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/scheduler"
	"github.com/jhoicas/tabel-bot/internal/interfaces/bot"
	httpRouter "github.com/jhoicas/tabel-bot/internal/interfaces/http"
	"github.com/jhoicas/tabel-bot/internal/interfaces/telegram"
	"github.com/jhoicas/tabel-bot/pkg/clock"
	"github.com/jhoicas/tabel-bot/pkg/config"
	"github.com/jhoicas/tabel-bot/pkg/logger"
)

// store транзакции плюс репозитории вне транзакции.
type store interface {
	repository.TxRunner
	Repositories() repository.Repositories
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "загрузка конфигурации:", err)
		os.Exit(2)
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("db", cfg.DB.Driver).
		Str("tz", cfg.App.Timezone).
		Ints64("root_admins", cfg.Admin.RootIDs).
		Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("stopped with error")
	}
	log.Info().Msg("stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	repos := st.Repositories()
	clk := clock.Real(cfg.App.Location())

	api, err := telegram.Connect(cfg.Telegram)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	texts := notification.DefaultTexts()
	if cfg.Notifications.TextsPath != "" {
		if texts, err = notification.LoadTexts(cfg.Notifications.TextsPath); err != nil {
			return err
		}
	}

	var pdf *export.PDFGenerator
	if cfg.Export.PDFFont != "" {
		fonts, err := export.LoadFont(cfg.Export.PDFFont)
		if err != nil {
			return err
		}
		pdf = export.NewPDFGenerator(fonts)
	}

	directory := personnel.NewDirectory(repos.Users, cfg.Admin.RootIDs)
	emitter := notification.NewEmitter(telegram.NewSender(api), directory, repos.Notifications, texts, clk, log.Component("notify"))
	defer emitter.Wait()

	reports := report.NewService(repos, clk)
	journalSvc := journal.NewService(st, repos.Events, export.NewExporter(cfg.App.Location(), pdf), cfg.Export.MaxRows, clk, log.Component("journal"))
	perms := permissions.NewService(st, repos.Permissions, clk, log.Component("permissions"))
	tracker := conversation.NewTracker(cfg.Conversation.StateTTL, clk)

	var tokens *auth.AuthUseCase
	if cfg.HTTP.Enabled {
		tokens = auth.NewAuthUseCase(st, directory, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}, clk, log.Component("auth"))
	}

	router := bot.NewRouter(bot.Deps{
		Engine:      attendance.NewEngine(st, repos.Users, emitter, clk, log.Component("attendance")),
		Personnel:   personnel.NewService(st, repos.Users, emitter, directory, clk, log.Component("personnel")),
		Permissions: perms,
		Journal:     journalSvc,
		Reports:     reports,
		Settings:    notification.NewSettings(st, repos.Notifications, clk, log.Component("settings")),
		Texts:       texts,
		Tracker:     tracker,
		Tokens:      tokens,
		Clock:       clk,
		Log:         log.Component("router"),
	})
	adapter := telegram.NewAdapter(api, router, log.Component("telegram"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return adapter.Poll(gctx, api, cfg.Telegram.PollTimeout)
	})

	g.Go(func() error {
		tracker.Run(gctx, cfg.Conversation.SweepInterval, func(n int) {
			log.Debug().Int("expired", n).Msg("conversation states swept")
		})
		return nil
	})

	if cfg.Notifications.Enabled {
		sched, err := scheduler.New(scheduler.Config{
			DailySummary: cfg.Notifications.DailySummaryCron,
			Reminders:    cfg.Notifications.RemindersCron,
			Location:     cfg.App.Location(),
		}, notification.NewJobs(emitter, repos.Users, reports), log.Component("scheduler"))
		if err != nil {
			return err
		}
		g.Go(func() error { return sched.Run(gctx) })
	}

	if cfg.HTTP.Enabled {
		app := fiber.New(fiber.Config{
			AppName:               cfg.App.Name,
			ReadTimeout:           time.Second * 10,
			WriteTimeout:          time.Second * 10,
			IdleTimeout:           time.Second * 60,
			DisableStartupMessage: true,
		})
		app.Use(recover.New())
		httpRouter.Router(app, httpRouter.RouterDeps{
			Reports:   reports,
			Journal:   journalSvc,
			Admins:    directory,
			Perms:     perms,
			JWTSecret: cfg.JWT.Secret,
			Clock:     clk,
			Service:   cfg.App.Name,
		})

		g.Go(func() error {
			log.Info().Str("addr", cfg.HTTP.Addr()).Msg("http listening")
			return app.Listen(cfg.HTTP.Addr())
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore PostgreSQL с миграциями или хранилище в памяти для разработки.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.NewTxRunner(pool), pool.Close, nil
}
