package logger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/tabel-bot/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, logger.ParseLevel(in), in)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := logger.Nop()
	assert.NotPanics(t, func() {
		l.Info().Str("k", "v").Msg("hello")
		l.Component("bot").Error().Msg("boom")
	})
}
