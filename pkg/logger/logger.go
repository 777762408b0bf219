package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config параметры логгера.
type Config struct {
	Env   string // development -> читаемая консоль; иначе JSON
	Level string // trace, debug, info, warn, error
	App   string // попадает в каждое сообщение полем app, если не пусто
}

// Logger обёртка над zerolog для внедрения через конструкторы.
type Logger struct {
	zl zerolog.Logger
}

// New создаёт структурированный логгер и перенаправляет в него глобальный zerolog/log.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	zc := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.App != "" {
		zc = zc.Str("app", cfg.App)
	}
	zl := zc.Logger()

	log.Logger = zl

	return &Logger{zl: zl}
}

// Nop логгер, который ничего не пишет. Для тестов.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel переводит строку уровня в zerolog.Level; неизвестное значение = info.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Trace, Debug, Info, Warn, Error делегаты zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With контекст для дочернего логгера с фиксированными полями.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Component дочерний логгер с полем component.
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// Zerolog внутренний логгер для прямого доступа к API.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
