package config

import "time"

// Section accessor methods return snapshot structs. A setting that is
// missing or of the wrong type falls back to its built-in default.

// ProjectConfig holds the settings of newly created projects.
type ProjectConfig struct {
	Width     int
	Height    int
	FrameRate float64
}

// ResourceConfig controls media probing and watching.
type ResourceConfig struct {
	// Watch enables file watching of media resources.
	Watch bool

	// LoadWorkers is the number of concurrent probe workers.
	LoadWorkers int

	// StatCacheTTL is how long probe results are reused.
	StatCacheTTL time.Duration

	// DebounceDelay coalesces bursts of file events.
	DebounceDelay time.Duration
}

// HistoryConfig controls undo history.
type HistoryConfig struct {
	MaxEntries int
}

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
}

// ScriptConfig bounds Lua scripts. CallLimit caps the number of project
// API calls one script may make.
type ScriptConfig struct {
	Timeout   time.Duration
	CallLimit int
}

// Project returns project settings.
func (c *Config) Project() ProjectConfig {
	return ProjectConfig{
		Width:     c.getIntOr("project.width", 1920),
		Height:    c.getIntOr("project.height", 1080),
		FrameRate: c.getFloatOr("project.frameRate", 30),
	}
}

// Resources returns resource settings.
func (c *Config) Resources() ResourceConfig {
	return ResourceConfig{
		Watch:         c.getBoolOr("resources.watch", false),
		LoadWorkers:   c.getIntOr("resources.loadWorkers", 4),
		StatCacheTTL:  c.getDurationOr("resources.statCacheTTL", 5*time.Minute),
		DebounceDelay: c.getDurationOr("resources.debounceDelay", 250*time.Millisecond),
	}
}

// History returns history settings.
func (c *Config) History() HistoryConfig {
	return HistoryConfig{
		MaxEntries: c.getIntOr("history.maxEntries", 1000),
	}
}

// Logging returns logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.getStringOr("logging.level", "info"),
	}
}

// Script returns script settings.
func (c *Config) Script() ScriptConfig {
	return ScriptConfig{
		Timeout:   c.getDurationOr("script.timeout", 5*time.Second),
		CallLimit: c.getIntOr("script.callLimit", 100_000),
	}
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	if v, err := c.GetString(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	if v, err := c.GetInt(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	if v, err := c.GetBool(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getFloatOr(path string, defaultValue float64) float64 {
	if v, err := c.GetFloat(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	if v, err := c.GetDuration(path); err == nil {
		return v
	}
	return defaultValue
}
