// Package logging provides categorized logging for taskrouter, built on zap.
// Each pipeline stage logs under its own category so a single stage can be
// turned on in isolation via config. When debug_mode is off, category logs
// are dropped at the gate and only the base logger output remains.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskrouter/internal/config"
)

// Category represents a log category, one per pipeline stage.
type Category string

const (
	CategoryRegistry Category = "registry" // handler profile loading, hot reload
	CategoryTriage   Category = "triage"   // extraction, calibration, detection, policy
	CategoryLearning Category = "learning" // pattern weight updates, suggestions
	CategoryRules    Category = "rules"    // mangle conflict rulebase
	CategoryCLI      Category = "cli"      // command entry points
)

var (
	mu      sync.RWMutex
	base    *zap.SugaredLogger
	byCat   map[Category]*zap.SugaredLogger
	catConf config.LoggingConfig
)

func init() {
	// Safe no-op default until Initialize runs.
	base = zap.NewNop().Sugar()
	byCat = make(map[Category]*zap.SugaredLogger)
}

// Initialize builds the zap backend from config. Call once at startup.
func Initialize(cfg config.LoggingConfig) error {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); cfg.Level != "" && err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if cfg.DebugMode {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	sink := zapcore.Lock(os.Stderr)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		sink = zapcore.Lock(f)
	}

	core := zapcore.NewCore(enc, sink, level)
	logger := zap.New(core)

	mu.Lock()
	defer mu.Unlock()
	base = logger.Sugar()
	byCat = make(map[Category]*zap.SugaredLogger)
	catConf = cfg
	return nil
}

// Get returns the logger for a category, creating it on first use.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := byCat[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := byCat[category]; ok {
		return l
	}
	l := base.Named(string(category))
	byCat[category] = l
	return l
}

// enabled reports whether category logging should emit at all.
func enabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return catConf.IsCategoryEnabled(string(category))
}

// Sync flushes buffered log entries. Call before exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

// Category convenience helpers. These gate on config so hot paths can call
// them unconditionally.

func Registry(format string, args ...interface{}) {
	if enabled(CategoryRegistry) {
		Get(CategoryRegistry).Infof(format, args...)
	}
}

func RegistryDebug(format string, args ...interface{}) {
	if enabled(CategoryRegistry) {
		Get(CategoryRegistry).Debugf(format, args...)
	}
}

func Triage(format string, args ...interface{}) {
	if enabled(CategoryTriage) {
		Get(CategoryTriage).Infof(format, args...)
	}
}

func TriageDebug(format string, args ...interface{}) {
	if enabled(CategoryTriage) {
		Get(CategoryTriage).Debugf(format, args...)
	}
}

func Learning(format string, args ...interface{}) {
	if enabled(CategoryLearning) {
		Get(CategoryLearning).Infof(format, args...)
	}
}

func LearningDebug(format string, args ...interface{}) {
	if enabled(CategoryLearning) {
		Get(CategoryLearning).Debugf(format, args...)
	}
}

func Rules(format string, args ...interface{}) {
	if enabled(CategoryRules) {
		Get(CategoryRules).Infof(format, args...)
	}
}

// Warn logs a warning regardless of category gating. Invariant breaches
// (e.g. a clamped weight) go through here so they are never silenced.
func Warn(category Category, format string, args ...interface{}) {
	Get(category).Warnf(format, args...)
}

// Error logs an error regardless of category gating.
func Error(category Category, format string, args ...interface{}) {
	Get(category).Errorf(format, args...)
}
