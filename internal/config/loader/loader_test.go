package loader

import (
	"errors"
	"io/fs"
	"testing"
	"time"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path   string
		format string
		err    error
	}{
		{"/etc/splice.toml", "toml", nil},
		{"/etc/splice.yaml", "yaml", nil},
		{"/etc/splice.YML", "yaml", nil},
		{"/etc/splice.json", "", ErrUnknownFormat},
	}
	for _, tt := range tests {
		l, err := ForPath(memFS{}, tt.path)
		if !errors.Is(err, tt.err) {
			t.Errorf("ForPath(%q) error = %v, want %v", tt.path, err, tt.err)
			continue
		}
		if err == nil && l.Format() != tt.format {
			t.Errorf("ForPath(%q).Format() = %q, want %q", tt.path, l.Format(), tt.format)
		}
	}
}

func TestFileLoadersAgree(t *testing.T) {
	fsys := memFS{
		"/c.toml": `
[resources]
loadWorkers = 8
watch = true

[logging]
level = "debug"
`,
		"/c.yaml": `
resources:
  loadWorkers: 8
  watch: true
logging:
  level: debug
`,
	}
	for _, path := range []string{"/c.toml", "/c.yaml"} {
		t.Run(path, func(t *testing.T) {
			l, err := ForPath(fsys, path)
			if err != nil {
				t.Fatal(err)
			}
			config, err := l.Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if v, _ := GetByPath(config, "resources.loadWorkers"); v != int64(8) {
				t.Errorf("loadWorkers = %v (%T), want int64 8", v, v)
			}
			if v, _ := GetByPath(config, "resources.watch"); v != true {
				t.Errorf("watch = %v", v)
			}
			if v, _ := GetByPath(config, "logging.level"); v != "debug" {
				t.Errorf("level = %v", v)
			}
		})
	}
}

func TestFileLoaderMissingAndInvalid(t *testing.T) {
	fsys := memFS{"/bad.toml": "[unterminated", "/bad.yaml": "a: [1, 2"}

	config, err := NewTOMLLoader(fsys, "/none.toml").Load()
	if err != nil || config != nil {
		t.Errorf("missing file = %v, %v; want nil, nil", config, err)
	}

	for _, path := range []string{"/bad.toml", "/bad.yaml"} {
		l, _ := ForPath(fsys, path)
		_, err := l.Load()
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Path != path {
			t.Errorf("%s: error = %v, want *ParseError", path, err)
		}
	}

	empty, err := NewYAMLLoader(memFS{"/e.yaml": ""}, "/e.yaml").Load()
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty yaml = %v, %v", empty, err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"logging":   map[string]any{"level": "info", "prefix": "splice"},
		"resources": map[string]any{"watch": false},
	}
	src := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"history": map[string]any{"maxEntries": int64(10)},
	}
	got := DeepMerge(dst, src)

	checks := map[string]any{
		"logging.level":      "debug",
		"logging.prefix":     "splice",
		"resources.watch":    false,
		"history.maxEntries": int64(10),
	}
	for path, want := range checks {
		if v, ok := GetByPath(got, path); !ok || v != want {
			t.Errorf("%s = %v, want %v", path, v, want)
		}
	}

	// Merged maps are copies.
	src["history"].(map[string]any)["maxEntries"] = int64(99)
	if v, _ := GetByPath(got, "history.maxEntries"); v != int64(10) {
		t.Error("DeepMerge should copy nested maps from src")
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader("SPLICE_")
	l.environ = func() []string {
		return []string{
			"SPLICE_LOG_LEVEL=warn",
			"SPLICE_WORKERS=2",
			"SPLICE_RESOURCES_DEBOUNCE_DELAY=90s",
			"SPLICE_STAT_CACHE_TTL=1m",
			"SPLICE_PROJECT_FRAME_RATE=29.97",
			"SPLICE_WATCH=off",
			"SPLICE_X=ignored",
			"OTHER_VAR=1",
		}
	}
	config, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}

	checks := map[string]any{
		"logging.level":           "warn",
		"resources.loadWorkers":   int64(2),
		"resources.debounceDelay": 90 * time.Second,
		"resources.statCacheTTL":  time.Minute,
		"project.frameRate":       29.97,
		"resources.watch":         false,
	}
	for path, want := range checks {
		if v, ok := GetByPath(config, path); !ok || v != want {
			t.Errorf("%s = %v (%T), want %v", path, v, v, want)
		}
	}
	if _, ok := config["x"]; ok {
		t.Error("a prefixed name without a setting should be ignored")
	}
	if _, ok := config["other"]; ok {
		t.Error("unprefixed variables should be ignored")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"1", int64(1)},
		{"0", int64(0)},
		{"yes", true},
		{"OFF", false},
		{"2.5", 2.5},
		{"250ms", 250 * time.Millisecond},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.in, got, got, tt.want)
		}
	}
}
