package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NewYAMLLoader creates a loader for a YAML file.
func NewYAMLLoader(fsys FileSystem, path string) *FileLoader {
	return &FileLoader{
		fs:     fsys,
		path:   path,
		format: "yaml",
		parse:  parseYAML,
	}
}

func parseYAML(data []byte, out *map[string]any) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	normalized, err := normalizeYAML(raw)
	if err != nil {
		return err
	}
	m, _ := normalized.(map[string]any)
	*out = m
	return nil
}

// normalizeYAML converts ints to int64, as go-toml produces, and rejects
// non-string map keys.
func normalizeYAML(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			n, err := normalizeYAML(child)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return int64(val), nil
	default:
		return v, nil
	}
}
