package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/julianails/tg_booking_bot/pkg/utils/errs"
	"gopkg.in/yaml.v3"
)

const defaultPath = "cmd/bot/etc/app.yml"

type ServiceConfig struct {
	Key         string `yaml:"key" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	DurationMin int    `yaml:"duration_min" validate:"required,gt=0"`
	Price       int    `yaml:"price" validate:"gte=0"`
}

type Config struct {
	// PostgresDSN пустой — движок работает на in-memory хранилище.
	PostgresDSN  string          `yaml:"postgres_dsn"`
	AdminIDs     []int64         `yaml:"admin_ids"`
	ReminderCron string          `yaml:"reminder_cron"`
	Slots        []string        `yaml:"slots" validate:"required,min=1"`
	Services     []ServiceConfig `yaml:"services" validate:"required,min=1,dive"`
	BotToken     string
}

// Load reads the YAML config, validates it and overlays secrets from
// the environment (.env if present).
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New("failed to read config file").Arg("path", path).Wrap(err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.New("failed to unmarshal YAML").Wrap(err)
	}

	if err = validator.New().Struct(cfg); err != nil {
		return nil, errs.New("config validation failed").Wrap(err)
	}

	// .env не обязателен: в проде токен приходит из окружения.
	_ = godotenv.Load()
	cfg.BotToken = os.Getenv("TG_TOKEN")

	return &cfg, nil
}

// IsAdmin reports whether the actor is on the configured allowlist.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
