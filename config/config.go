package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Data holds storage paths
type Data struct {
	DBPath  string `yaml:"db_path" env:"CHATBOT_DB_PATH" env-default:"data/chatbot.db"`
	LogPath string `yaml:"log_path" env:"CHATBOT_LOG_PATH"`
}

// Provider holds generation service settings
type Provider struct {
	Kind        string  `yaml:"kind" env:"CHATBOT_PROVIDER" env-default:"ollama"` // "ollama" or "openai"
	APIKey      string  `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"CHATBOT_BASE_URL"`
	Model       string  `yaml:"model" env:"CHATBOT_MODEL" env-default:"gemma2"`
	MaxTokens   int     `yaml:"max_tokens" env:"CHATBOT_MAX_TOKENS"`
	Temperature float64 `yaml:"temperature" env:"CHATBOT_TEMPERATURE"`
	Timeout     int     `yaml:"timeout_seconds" env:"CHATBOT_TIMEOUT_SECONDS"`
}

// Config is the application configuration, read from an optional YAML
// file with environment variable overrides.
type Config struct {
	Data     Data     `yaml:"data"`
	Provider Provider `yaml:"provider"`
}

// Load reads configuration from cfgPath (may be empty) and then from
// the environment.
func Load(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}
