package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dshills/splice/internal/config/loader"
)

// Config provides layered access to splice settings.
// It is safe for concurrent use.
type Config struct {
	mu sync.RWMutex

	fs           loader.FileSystem
	filePath     string
	explicitFile bool
	envPrefix    string

	defaults map[string]any
	file     map[string]any
	env      map[string]any
	session  map[string]any
	merged   map[string]any
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile names the configuration file. Unlike the default file, it
// must exist when Load is called.
func WithFile(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.filePath = path
			c.explicitFile = true
		}
	}
}

// WithFS sets the file system the config file is read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a Config holding only the built-in defaults until Load.
func New(opts ...Option) *Config {
	c := &Config{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		defaults:  defaultConfig(),
		session:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.filePath == "" {
		c.filePath = DefaultFilePath()
	}
	c.rebuild()
	return c
}

// DefaultFilePath returns the user config file path.
func DefaultFilePath() string {
	return filepath.Join(defaultUserConfigDir(), "config.toml")
}

// Load reads the file and environment layers.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fileData, err := c.loadFile()
	if err != nil {
		return err
	}

	var envData map[string]any
	if c.envPrefix != "" {
		envData, err = loader.NewEnvLoader(c.envPrefix).Load()
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = fileData
	c.env = envData
	c.rebuild()
	return nil
}

func (c *Config) loadFile() (map[string]any, error) {
	if c.filePath == "" {
		return nil, nil
	}
	l, err := loader.ForPath(c.fs, c.filePath)
	if err != nil {
		return nil, err
	}
	data, err := l.Load()
	if err != nil {
		return nil, err
	}
	if data == nil && c.explicitFile {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, c.filePath)
	}
	return data, nil
}

// rebuild recomputes the merged view. Callers hold mu or own c.
func (c *Config) rebuild() {
	merged := loader.DeepMerge(nil, c.defaults)
	merged = loader.DeepMerge(merged, c.file)
	merged = loader.DeepMerge(merged, c.env)
	c.merged = loader.DeepMerge(merged, c.session)
}

// FilePath returns the config file path in use.
func (c *Config) FilePath() string {
	return c.filePath
}

// Get returns the merged value at the given dotted path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float", Actual: typeName(v)}
	}
}

// GetDuration returns a duration at the given path. Strings are parsed
// with time.ParseDuration.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", val)}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// Set overrides a value for the rest of the session.
func (c *Config) Set(path string, value any) error {
	if err := validatePath(path); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	loader.SetByPath(c.session, path, value)
	c.rebuild()
	return nil
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.DeepMerge(nil, c.merged)
}

func validatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return nil
}

func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "splice")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "splice")
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"project": map[string]any{
			"width":     int64(1920),
			"height":    int64(1080),
			"frameRate": 30.0,
		},
		"resources": map[string]any{
			"watch":         false,
			"loadWorkers":   int64(4),
			"statCacheTTL":  "5m",
			"debounceDelay": "250ms",
		},
		"history": map[string]any{
			"maxEntries": int64(1000),
		},
		"logging": map[string]any{
			"level": "info",
		},
		"script": map[string]any{
			"timeout":   "5s",
			"callLimit": int64(100_000),
		},
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
