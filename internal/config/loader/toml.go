package loader

import (
	"github.com/pelletier/go-toml/v2"
)

// NewTOMLLoader creates a loader for a TOML file.
func NewTOMLLoader(fsys FileSystem, path string) *FileLoader {
	return &FileLoader{
		fs:     fsys,
		path:   path,
		format: "toml",
		parse: func(data []byte, out *map[string]any) error {
			return toml.Unmarshal(data, out)
		},
	}
}
