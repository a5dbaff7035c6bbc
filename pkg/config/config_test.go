package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianails/tg_booking_bot/pkg/config"
)

const validYAML = `
postgres_dsn: ""
admin_ids: [42]
reminder_cron: "0 18 * * *"
slots: ["09:00", "10:30"]
services:
  - key: classic
    name: "Классический маникюр"
    duration_min: 60
    price: 1500
`

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoad(t *testing.T) {
	writeConfig(t, validYAML)
	t.Setenv("TG_TOKEN", "token-from-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{42}, cfg.AdminIDs)
	assert.Equal(t, "0 18 * * *", cfg.ReminderCron)
	assert.Equal(t, []string{"09:00", "10:30"}, cfg.Slots)
	require.Len(t, cfg.Services, 1)
	assert.Equal(t, "classic", cfg.Services[0].Key)
	assert.Equal(t, 1500, cfg.Services[0].Price)
	assert.Equal(t, "token-from-env", cfg.BotToken)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yml"))
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no services", "slots: [\"09:00\"]\n"},
		{"no slots", "services:\n  - key: x\n    name: x\n    duration_min: 30\n"},
		{"zero duration", "slots: [\"09:00\"]\nservices:\n  - key: x\n    name: x\n    duration_min: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeConfig(t, tc.yaml)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &config.Config{AdminIDs: []int64{42, 99}}
	assert.True(t, cfg.IsAdmin(42))
	assert.True(t, cfg.IsAdmin(99))
	assert.False(t, cfg.IsAdmin(1))
}
