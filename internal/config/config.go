package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	ListingLimit     int           `envconfig:"LISTING_LIMIT" default:"10"`
	UpdateTimeout    int           `envconfig:"UPDATE_TIMEOUT" default:"60"`
	Debug            bool          `envconfig:"BOT_DEBUG" default:"false"`
}

// Load reads the configuration from the environment, with a best-effort
// .env file load first. A missing .env file is fine; a missing bot token
// is not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if cfg.TelegramBotToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	return cfg, nil
}
