package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `json:"database" envPrefix:"ASKDB_"`
	LLM      LLMConfig      `json:"llm"      envPrefix:"ASKDB_"`
	Server   ServerConfig   `json:"server"   envPrefix:"ASKDB_"`
	Logging  LoggingConfig  `json:"logging"  envPrefix:"ASKDB_"`
}

// DatabaseConfig selects and parameterizes the default data source. Kind is
// the connector registry key; Path serves file-based stores, the host/port
// fields serve network stores.
type DatabaseConfig struct {
	Kind         string `json:"kind"          env:"DB_KIND"          envDefault:"postgres"`
	Host         string `json:"host"          env:"DB_HOST"          envDefault:"localhost"`
	Port         int    `json:"port"          env:"DB_PORT"          envDefault:"5432"`
	Name         string `json:"name"          env:"DB_NAME"          envDefault:"askdb"`
	User         string `json:"user"          env:"DB_USER"          envDefault:""`
	Password     string `json:"password"      env:"DB_PASSWORD"      envDefault:""`
	SSLMode      string `json:"ssl_mode"      env:"DB_SSL_MODE"      envDefault:"disable"`
	Path         string `json:"path"          env:"DB_PATH"          envDefault:""`
	QueryTimeout string `json:"query_timeout" env:"DB_QUERY_TIMEOUT" envDefault:"30s"`
}

// LLMConfig represents completion service configuration
type LLMConfig struct {
	Provider    string  `json:"provider"    env:"LLM_PROVIDER"    envDefault:"openai"`
	Model       string  `json:"model"       env:"LLM_MODEL"       envDefault:"gpt-4o-mini"`
	APIKey      string  `json:"api_key"     env:"LLM_API_KEY"     envDefault:""`
	BaseURL     string  `json:"base_url"    env:"LLM_BASE_URL"    envDefault:""`
	Temperature float64 `json:"temperature" env:"LLM_TEMPERATURE" envDefault:"0.1"`
	MaxTokens   int     `json:"max_tokens"  env:"LLM_MAX_TOKENS"  envDefault:"1200"`
	Timeout     string  `json:"timeout"     env:"LLM_TIMEOUT"     envDefault:"60s"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Addr         string `json:"addr"          env:"SERVER_ADDR"          envDefault:":8080"`
	ReadTimeout  string `json:"read_timeout"  env:"SERVER_READ_TIMEOUT"  envDefault:"15s"`
	WriteTimeout string `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"info"` // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"` // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"`
}

// Load loads configuration from an optional JSON config file followed by
// environment variable overrides, then validates the result.
func Load() (*Config, error) {
	config := &Config{}

	if configPath := os.Getenv("ASKDB_CONFIG"); configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(config, env.Options{
		Prefix: "ASKDB_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a JSON file
func loadFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	merge(config, &fileConfig)

	return nil
}

// merge merges source configuration into target configuration
func merge(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := range s.NumField() {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validate checks the configuration for common errors
func validate(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	if config.Database.Kind == "" {
		return fmt.Errorf("database kind is required")
	}

	if _, err := time.ParseDuration(config.Database.QueryTimeout); err != nil {
		return fmt.Errorf("invalid database query timeout: %s", config.Database.QueryTimeout)
	}

	if _, err := time.ParseDuration(config.LLM.Timeout); err != nil {
		return fmt.Errorf("invalid LLM timeout: %s", config.LLM.Timeout)
	}

	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("invalid LLM temperature: %f (must be in [0, 2])", config.LLM.Temperature)
	}

	if config.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM max tokens must be positive: %d", config.LLM.MaxTokens)
	}

	return nil
}
