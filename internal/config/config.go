package config

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Backend  BackendConfig  `mapstructure:"backend"`
	LogLevel string         `mapstructure:"log_level"`
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token   string `mapstructure:"token"`
	BotName string `mapstructure:"bot_name"`
}

// BackendConfig holds the configuration for the education REST backend
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}
