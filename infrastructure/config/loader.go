package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from layered sources. From lowest to highest
// priority:
//  1. defaults in code
//  2. base.yaml
//  3. <environment>.yaml
//  4. local.yaml (development only)
//  5. environment variables
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
}

// NewLoader creates a loader reading files from basePath
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{
		basePath:    basePath,
		environment: env,
	}
}

// Load loads, overlays and validates the configuration
func (l *Loader) Load() (*Config, error) {
	l.sources = []string{"defaults"}
	cfg := l.defaultConfig()

	if err := l.loadFile("base", cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s config: %w", envFile, err)
	}

	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes name.yaml or name.yml over cfg
func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(l.basePath, name+"."+ext)

		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		err = decodeYAML(file, cfg)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		l.sources = append(l.sources, path)
		return nil
	}
	return os.ErrNotExist
}

func decodeYAML(r io.Reader, target interface{}) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// loadEnvironmentVariables overlays environment variables on the
// configuration
func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	cfg.Server.Address = getEnv("SERVER_ADDRESS", cfg.Server.Address)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Editor.HitToleranceMM = getEnvFloat("HIT_TOLERANCE_MM", cfg.Editor.HitToleranceMM)
	cfg.Editor.DefaultLineWidthMM = getEnvFloat("DEFAULT_LINE_WIDTH_MM", cfg.Editor.DefaultLineWidthMM)
	cfg.Editor.MaxUndoDepth = getEnvInt("MAX_UNDO_DEPTH", cfg.Editor.MaxUndoDepth)
	cfg.Editor.AllowAmbiguityChooser = getEnvBool("ALLOW_AMBIGUITY_CHOOSER", cfg.Editor.AllowAmbiguityChooser)

	cfg.Events.EventBridgeEnabled = getEnvBool("ENABLE_EVENTBRIDGE", cfg.Events.EventBridgeEnabled)
	cfg.Events.EventBusName = getEnv("EVENT_BUS_NAME", cfg.Events.EventBusName)
	cfg.Events.Region = getEnv("AWS_REGION", cfg.Events.Region)
	cfg.Events.ActivityLimit = getEnvInt("ACTIVITY_LIMIT", cfg.Events.ActivityLimit)

	cfg.Metrics.Enabled = getEnvBool("ENABLE_METRICS", cfg.Metrics.Enabled)
	cfg.Tracing.Enabled = getEnvBool("ENABLE_TRACING", cfg.Tracing.Enabled)
	cfg.CORS.Enabled = getEnvBool("ENABLE_CORS", cfg.CORS.Enabled)

	cfg.FixturesDir = getEnv("FIXTURES_DIR", cfg.FixturesDir)
}

// defaultConfig returns a configuration that runs without any files
func (l *Loader) defaultConfig() *Config {
	d := defaultEditor(l.environment)
	logging := Logging{Level: "info", Format: "json"}
	if l.environment == Development {
		logging = Logging{Level: "debug", Format: "console"}
	}

	return &Config{
		Environment: l.environment,
		Server: Server{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		Logging: logging,
		Editor:  d,
		Events: Events{
			EventBusName:     "boardedit-events",
			Region:           "us-east-1",
			MaxRetries:       3,
			RetryBackoff:     100 * time.Millisecond,
			BreakerTripAfter: 5,
			BreakerReset:     30 * time.Second,
			ActivityLimit:    200,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "boardedit",
			Path:      "/metrics",
		},
		Tracing: Tracing{
			ServiceName: "boardedit",
		},
		CORS: CORS{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
		},
	}
}

func defaultEditor(env Environment) Editor {
	d := domainConfigFor(env)
	layers := make([]string, 0, len(d.Layers))
	for _, l := range d.Layers {
		layers = append(layers, l.String())
	}
	return Editor{
		HitToleranceMM:        d.HitTolerance.MM(),
		DefaultLineWidthMM:    d.DefaultLineWidth.MM(),
		MinLineWidthMM:        d.MinLineWidth.MM(),
		Layers:                layers,
		MaxElementsPerBoard:   d.MaxElementsPerBoard,
		MaxUndoDepth:          d.MaxUndoDepth,
		AllowAmbiguityChooser: d.AllowAmbiguityChooser,
	}
}

// Load loads configuration for the environment named by ENVIRONMENT from
// the directory named by CONFIG_DIR
func Load() (*Config, error) {
	return NewLoader(getEnv("CONFIG_DIR", "config"), getEnvironment()).Load()
}
