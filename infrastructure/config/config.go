package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"

	domainconfig "boardedit/domain/config"
	"boardedit/domain/core/valueobjects"
)

// Environment names a deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config holds all application configuration
type Config struct {
	Environment Environment `yaml:"environment"`

	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	Editor  Editor  `yaml:"editor"`
	Events  Events  `yaml:"events"`
	Metrics Metrics `yaml:"metrics"`
	Tracing Tracing `yaml:"tracing"`
	CORS    CORS    `yaml:"cors"`

	// Boards are loaded from fixture files in this directory at startup
	FixturesDir string `yaml:"fixtures_dir"`

	// LoadedFrom lists the sources that were applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// Server configures the HTTP API
type Server struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxRequestSize  int64         `yaml:"max_request_size"`
}

// Logging configures the zap logger
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Editor holds the editing rules handed to every board. Lengths are in
// millimetres.
type Editor struct {
	HitToleranceMM        float64  `yaml:"hit_tolerance_mm"`
	DefaultLineWidthMM    float64  `yaml:"default_line_width_mm"`
	MinLineWidthMM        float64  `yaml:"min_line_width_mm"`
	Layers                []string `yaml:"layers"`
	MaxElementsPerBoard   int      `yaml:"max_elements_per_board"`
	MaxUndoDepth          int      `yaml:"max_undo_depth"`
	AllowAmbiguityChooser bool     `yaml:"allow_ambiguity_chooser"`
}

// Events configures where committed edits are announced
type Events struct {
	EventBridgeEnabled bool          `yaml:"eventbridge_enabled"`
	EventBusName       string        `yaml:"event_bus_name"`
	Region             string        `yaml:"region"`
	MaxRetries         int           `yaml:"max_retries"`
	RetryBackoff       time.Duration `yaml:"retry_backoff"`
	BreakerTripAfter   uint32        `yaml:"breaker_trip_after"`
	BreakerReset       time.Duration `yaml:"breaker_reset"`

	// ActivityLimit bounds the recent changes kept per board for the
	// activity query
	ActivityLimit int `yaml:"activity_limit"`
}

// Metrics configures the Prometheus collector
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path"`
}

// Tracing configures OpenTelemetry spans
type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// CORS configures cross-origin access to the API
type CORS struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("log format must be json or console, got %q", c.Logging.Format)
	}
	if c.Events.EventBridgeEnabled && c.Events.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when EventBridge is enabled")
	}
	for name, mm := range map[string]float64{
		"hit_tolerance_mm":      c.Editor.HitToleranceMM,
		"default_line_width_mm": c.Editor.DefaultLineWidthMM,
		"min_line_width_mm":     c.Editor.MinLineWidthMM,
	} {
		if _, err := valueobjects.ParseMM(mm); err != nil {
			return fmt.Errorf("editor %s: %w", name, err)
		}
	}
	if err := c.DomainConfig().Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// DomainConfig converts the editor settings into board rules
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	d := domainConfigFor(c.Environment)
	d.HitTolerance = valueobjects.LengthFromMM(c.Editor.HitToleranceMM)
	d.DefaultLineWidth = valueobjects.LengthFromMM(c.Editor.DefaultLineWidthMM)
	d.MinLineWidth = valueobjects.LengthFromMM(c.Editor.MinLineWidthMM)
	if len(c.Editor.Layers) > 0 {
		d.Layers = make([]valueobjects.Layer, 0, len(c.Editor.Layers))
		for _, l := range c.Editor.Layers {
			d.Layers = append(d.Layers, valueobjects.Layer(l))
		}
	}
	if c.Editor.MaxElementsPerBoard > 0 {
		d.MaxElementsPerBoard = c.Editor.MaxElementsPerBoard
	}
	d.MaxUndoDepth = c.Editor.MaxUndoDepth
	d.AllowAmbiguityChooser = c.Editor.AllowAmbiguityChooser
	return d
}

func domainConfigFor(env Environment) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(string(env))
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// getEnvironment reads the deployment environment
func getEnvironment() Environment {
	return Environment(getEnv("ENVIRONMENT", string(Development)))
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
