package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domainconfig "boardedit/domain/config"
	"boardedit/domain/core/valueobjects"
	"boardedit/infrastructure/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// TestLoader_Defaults loads a usable configuration without any files.
func TestLoader_Defaults(t *testing.T) {
	cfg, err := config.NewLoader(t.TempDir(), config.Development).Load()
	require.NoError(t, err)

	assert.Equal(t, config.Development, cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Editor.AllowAmbiguityChooser)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)

	prod, err := config.NewLoader(t.TempDir(), config.Production).Load()
	require.NoError(t, err)
	assert.Equal(t, "json", prod.Logging.Format)
	assert.False(t, prod.Editor.AllowAmbiguityChooser)
	assert.Equal(t, 100, prod.Editor.MaxUndoDepth)
}

// TestLoader_Layers applies files and environment variables in priority order.
func TestLoader_Layers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
logging:
  level: warn
editor:
  hit_tolerance_mm: 0.05
  default_line_width_mm: 0.3
server:
  read_timeout: 5s
`)
	writeFile(t, dir, "staging.yml", `
editor:
  hit_tolerance_mm: 0.1
`)
	t.Setenv("DEFAULT_LINE_WIDTH_MM", "0.4")
	t.Setenv("MAX_UNDO_DEPTH", "7")

	cfg, err := config.NewLoader(dir, config.Staging).Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 0.1, cfg.Editor.HitToleranceMM)
	assert.Equal(t, 0.4, cfg.Editor.DefaultLineWidthMM)
	assert.Equal(t, 7, cfg.Editor.MaxUndoDepth)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{
		"defaults",
		filepath.Join(dir, "base.yaml"),
		filepath.Join(dir, "staging.yml"),
		"environment",
	}, cfg.LoadedFrom)

	d := cfg.DomainConfig()
	assert.Equal(t, valueobjects.LengthFromMM(0.1), d.HitTolerance)
	assert.Equal(t, valueobjects.LengthFromMM(0.4), d.DefaultLineWidth)
	assert.Equal(t, 7, d.MaxUndoDepth)
}

func TestLoader_LocalOnlyInDevelopment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", "logging:\n  level: error\n")

	dev, err := config.NewLoader(dir, config.Development).Load()
	require.NoError(t, err)
	assert.Equal(t, "error", dev.Logging.Level)

	prod, err := config.NewLoader(dir, config.Production).Load()
	require.NoError(t, err)
	assert.Equal(t, "info", prod.Logging.Level)
}

func TestLoader_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "editor:\n  tolerance: 1\n"},
		{name: "bad log level", content: "logging:\n  level: loud\n"},
		{name: "bad log format", content: "logging:\n  format: xml\n"},
		{name: "negative tolerance", content: "editor:\n  hit_tolerance_mm: -1\n"},
		{name: "line width below minimum", content: "editor:\n  default_line_width_mm: 0.1\n  min_line_width_mm: 0.2\n"},
		{name: "eventbridge without bus", content: "events:\n  eventbridge_enabled: true\n  event_bus_name: \"\"\n"},
		{name: "not yaml", content: "editor: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "base.yaml", tt.content)
			_, err := config.NewLoader(dir, config.Production).Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())

	cfg.Environment = "qa"
	assert.Error(t, cfg.Validate())

	cfg.Environment = config.Production
	cfg.Server.Address = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateEditorLengths(t *testing.T) {
	tests := []struct {
		name string
		edit func(*config.Editor)
	}{
		{name: "infinite hit tolerance", edit: func(e *config.Editor) { e.HitToleranceMM = math.Inf(1) }},
		{name: "line width not a number", edit: func(e *config.Editor) { e.DefaultLineWidthMM = math.NaN() }},
		{name: "huge minimum width", edit: func(e *config.Editor) { e.MinLineWidthMM = -1e12 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			tt.edit(&cfg.Editor)
			assert.ErrorIs(t, cfg.Validate(), valueobjects.ErrLengthOutOfRange)
		})
	}
}

// TestWatcher_Reload rewrites a watched file and expects the new level to
// reach the callbacks.
func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "logging:\n  level: info\n")

	initial, err := config.NewLoader(dir, config.Production).Load()
	require.NoError(t, err)

	w, err := config.NewWatcher(dir, initial, zap.NewNop(), config.WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w.OnChange(config.LevelUpdater(level, zap.NewNop()))

	writeFile(t, dir, "base.yaml", "logging:\n  level: error\n")

	require.Eventually(t, func() bool {
		return level.Level() == zapcore.ErrorLevel
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "error", w.Config().Logging.Level)

	// An invalid file keeps the previous configuration.
	writeFile(t, dir, "base.yaml", "logging:\n  level: loud\n")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "error", w.Config().Logging.Level)
	assert.Equal(t, zapcore.ErrorLevel, level.Level())
}

func TestWatcher_MissingDirectory(t *testing.T) {
	cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
	require.NoError(t, err)

	_, err = config.NewWatcher(filepath.Join(t.TempDir(), "missing"), cfg, zap.NewNop())
	assert.Error(t, err)
}

type rulesSink struct {
	rules []*domainconfig.DomainConfig
}

func (s *rulesSink) UpdateRules(rules *domainconfig.DomainConfig) {
	s.rules = append(s.rules, rules)
}

func TestRulesUpdater(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*config.Config)
		applied bool
	}{
		{
			name: "valid settings reach the target",
			edit: func(c *config.Config) {
				c.Editor.HitToleranceMM = 0.5
				c.Editor.MaxUndoDepth = 7
			},
			applied: true,
		},
		{
			name:    "negative undo depth is ignored",
			edit:    func(c *config.Config) { c.Editor.MaxUndoDepth = -1 },
			applied: false,
		},
		{
			name: "line width below minimum is ignored",
			edit: func(c *config.Config) {
				c.Editor.MinLineWidthMM = 1
				c.Editor.DefaultLineWidthMM = 0.2
			},
			applied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.NewLoader(t.TempDir(), config.Production).Load()
			require.NoError(t, err)
			tt.edit(cfg)

			sink := &rulesSink{}
			config.RulesUpdater(sink, zap.NewNop())(cfg)

			if !tt.applied {
				assert.Empty(t, sink.rules)
				return
			}
			require.Len(t, sink.rules, 1)
			assert.Equal(t, valueobjects.LengthFromMM(0.5), sink.rules[0].HitTolerance)
			assert.Equal(t, 7, sink.rules[0].MaxUndoDepth)
		})
	}
}
