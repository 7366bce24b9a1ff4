package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // json, text
	File       string          `yaml:"file"`       // optional log file; empty = stderr
	DebugMode  bool            `yaml:"debug_mode"` // master toggle for category logs
	Categories map[string]bool `yaml:"categories"` // per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false (production mode).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true // all enabled by default in debug mode
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}
