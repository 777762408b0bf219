package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tabel-bot/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "Europe/Kaliningrad", cfg.App.Timezone)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.False(t, cfg.DB.ForceIPv4)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.Equal(t, "0 19 * * *", cfg.Notifications.DailySummaryCron)
	assert.Equal(t, "30 20 * * *", cfg.Notifications.RemindersCron)
	assert.Equal(t, 30*time.Minute, cfg.Conversation.StateTTL)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "100, 200")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("STATE_TTL", "5m")

	cfg, err := config.Load([]string{"--db-driver", "memory", "--log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, []int64{100, 200}, cfg.Admin.RootIDs)
	assert.Equal(t, int64(100), cfg.Admin.MainID())
	assert.True(t, cfg.Admin.IsRoot(200))
	assert.False(t, cfg.Admin.IsRoot(300))
	assert.Equal(t, config.DriverMemory, cfg.DB.Driver, "флаг важнее переменной окружения")
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.Conversation.StateTTL)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bot.env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TOKEN=file-token\nADMIN_IDS=7\n"), 0o600))

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, []int64{7}, cfg.Admin.RootIDs)
}

func TestLoad_BadAdminIDs(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ADMIN_IDS", "1,abc")

	_, err := config.Load(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{
		App:  config.AppConfig{Timezone: "UTC"},
		DB:   config.DBConfig{Driver: config.DriverMemory},
		HTTP: config.HTTPConfig{Enabled: false},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
	assert.Contains(t, err.Error(), "ADMIN_IDS")

	cfg.Telegram.Token = "t"
	cfg.Admin.RootIDs = []int64{1}
	assert.NoError(t, cfg.Validate())
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "bot", Password: "p@ss", DBName: "tabel", SSLMode: "disable"}
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/tabel?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
