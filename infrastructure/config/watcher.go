package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domainconfig "boardedit/domain/config"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when a file in the config directory
// changes and hands the new configuration to the registered callbacks.
// An invalid file keeps the previous configuration.
type Watcher struct {
	basePath string
	debounce time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher starts watching basePath. initial is the configuration
// currently in use.
func NewWatcher(basePath string, initial *Config, logger *zap.Logger, opts ...WatcherOption) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(basePath); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", basePath, err)
	}

	w := &Watcher{
		basePath: basePath,
		debounce: defaultDebounce,
		logger:   logger,
		config:   initial,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("path", basePath),
		zap.String("environment", string(initial.Environment)),
	)
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	current := w.Config()

	next, err := NewLoader(w.basePath, current.Environment).Load()
	if err != nil {
		w.logger.Error("Keeping previous configuration", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.config = next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logChanges(current, next)
	for _, cb := range callbacks {
		cb(next)
	}
}

// OnChange registers a callback for every successful reload
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Config returns the current configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching and waits for the watch loop to exit
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	<-w.done
}

func (w *Watcher) logChanges(old, next *Config) {
	changes := make([]string, 0)
	if old.Logging.Level != next.Logging.Level {
		changes = append(changes, fmt.Sprintf("log level: %s -> %s", old.Logging.Level, next.Logging.Level))
	}
	if old.Editor.HitToleranceMM != next.Editor.HitToleranceMM {
		changes = append(changes, fmt.Sprintf("hit tolerance: %gmm -> %gmm", old.Editor.HitToleranceMM, next.Editor.HitToleranceMM))
	}
	if old.Editor.DefaultLineWidthMM != next.Editor.DefaultLineWidthMM {
		changes = append(changes, fmt.Sprintf("default line width: %gmm -> %gmm", old.Editor.DefaultLineWidthMM, next.Editor.DefaultLineWidthMM))
	}
	if old.Editor.MaxUndoDepth != next.Editor.MaxUndoDepth {
		changes = append(changes, fmt.Sprintf("max undo depth: %d -> %d", old.Editor.MaxUndoDepth, next.Editor.MaxUndoDepth))
	}
	if old.Editor.AllowAmbiguityChooser != next.Editor.AllowAmbiguityChooser {
		changes = append(changes, fmt.Sprintf("ambiguity chooser: %v -> %v", old.Editor.AllowAmbiguityChooser, next.Editor.AllowAmbiguityChooser))
	}
	w.logger.Info("Configuration reloaded", zap.Strings("changes", changes))
}

// LevelUpdater returns a callback that applies the reloaded log level
func LevelUpdater(level zap.AtomicLevel, logger *zap.Logger) func(*Config) {
	return func(cfg *Config) {
		l, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			logger.Warn("Ignoring invalid log level", zap.String("level", cfg.Logging.Level))
			return
		}
		if level.Level() != l {
			level.SetLevel(l)
			logger.Info("Log level changed", zap.String("level", l.String()))
		}
	}
}

// RulesTarget receives reloaded editing rules
type RulesTarget interface {
	UpdateRules(rules *domainconfig.DomainConfig)
}

// RulesUpdater returns a callback that hands the reloaded editor settings to
// target. Boards pick them up the next time they are opened.
func RulesUpdater(target RulesTarget, logger *zap.Logger) func(*Config) {
	return func(cfg *Config) {
		rules := cfg.DomainConfig()
		if err := rules.Validate(); err != nil {
			logger.Warn("Ignoring invalid editor settings", zap.Error(err))
			return
		}
		target.UpdateRules(rules)
		logger.Info("Editing rules updated",
			zap.Float64("hit_tolerance_mm", cfg.Editor.HitToleranceMM),
			zap.Int("max_undo_depth", rules.MaxUndoDepth),
			zap.Bool("ambiguity_chooser", rules.AllowAmbiguityChooser),
		)
	}
}

func isConfigFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
