package productmap

import (
	"encoding/json"
	"fmt"
	"os"
)

// Source loads the product map once at startup. The loaded Map is treated
// as an immutable snapshot for the process lifetime.
type Source interface {
	Load() (Map, error)
}

// InlineSource parses the map from a JSON string (env-supplied).
type InlineSource struct {
	JSON string
}

func (s InlineSource) Load() (Map, error) {
	var m Map
	if err := json.Unmarshal([]byte(s.JSON), &m); err != nil {
		return nil, fmt.Errorf("parse inline product map: %w", err)
	}
	return m, nil
}

// FileSource reads the map from a JSON file. A missing file yields an empty
// map so deployments relying purely on metafields need no map file; a file
// that exists but fails to parse is a configuration error.
type FileSource struct {
	Path string
}

func (s FileSource) Load() (Map, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("read product map %s: %w", s.Path, err)
	}

	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse product map %s: %w", s.Path, err)
	}
	return m, nil
}

// FromConfig selects the source: inline JSON wins when set, otherwise the
// file path is used.
func FromConfig(inlineJSON, filePath string) Source {
	if inlineJSON != "" {
		return InlineSource{JSON: inlineJSON}
	}
	return FileSource{Path: filePath}
}
