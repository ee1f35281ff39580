package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	ServerPort         string `mapstructure:"port" validate:"required,numeric"`
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	LogLevel           string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// Store settings
	StoreDriver  string `mapstructure:"store_driver" validate:"oneof=mongo memory"`
	MongoURI     string `mapstructure:"mongodb_uri" validate:"required_if=StoreDriver mongo"`
	DatabaseName string `mapstructure:"db_name" validate:"required_if=StoreDriver mongo"`

	// OpenTelemetry settings
	TelemetryEnabled bool   `mapstructure:"telemetry_enabled"`
	OTLPEndpoint     string `mapstructure:"otel_exporter_otlp_endpoint" validate:"required_if=TelemetryEnabled true"`
	ServiceName      string `mapstructure:"otel_service_name" validate:"required"`
	Environment      string `mapstructure:"environment"`
}

var defaults = map[string]any{
	"port":                        "5000",
	"cors_allowed_origins":        "*",
	"log_level":                   "info",
	"store_driver":                DriverMongo,
	"mongodb_uri":                 "mongodb://localhost:27017",
	"db_name":                     "todo",
	"telemetry_enabled":           true,
	"otel_exporter_otlp_endpoint": "localhost:4317",
	"otel_service_name":           "todo-api",
	"environment":                 "development",
}

// Load reads an optional .env file and then the process environment, applying
// defaults for anything unset. Variables already present in the environment
// win over the .env file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// AllowedOrigins splits CORSAllowedOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
