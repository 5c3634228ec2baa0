package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables. A .env file in
// the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("log_level", "info")

	// Define environment variables
	v.BindEnv("TG_TOKEN")
	v.BindEnv("API_URL")
	v.BindEnv("API_TOKEN")
	v.BindEnv("BOT_NAME")

	cfg := &Config{
		LogLevel: v.GetString("log_level"),
		Telegram: TelegramConfig{
			Token:   strings.TrimSpace(v.GetString("TG_TOKEN")),
			BotName: strings.TrimSpace(v.GetString("BOT_NAME")),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimSpace(v.GetString("API_URL")),
			Token:   strings.TrimSpace(v.GetString("API_TOKEN")),
		},
	}

	if cfg.Telegram.BotName == "" {
		cfg.Telegram.BotName = "EduInfoBot"
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TG_TOKEN is required")
	}

	if cfg.Backend.BaseURL == "" {
		return errors.New("API_URL is required")
	}

	if cfg.Backend.Token == "" {
		return errors.New("API_TOKEN is required")
	}

	return nil
}
