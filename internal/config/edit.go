package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"
)

// ParseValue interprets a command-line value: bool, then integer, then
// float, then string.
func ParseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// Set writes value at the dotted key in the JSONC file at path, creating the
// file if needed. A value whose type does not match the field at key is
// retried as a string; if the result still does not load as a Config the file
// is left untouched. JSONC comments are not preserved on write.
func Set(path, key string, value any) error {
	var existing []byte
	if data, err := os.ReadFile(path); err == nil {
		// sjson requires valid JSON.
		existing = jsonc.ToJSON(data)
	} else {
		existing = []byte("{}")
	}

	updated, err := sjson.SetBytes(existing, key, value)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}
	if err := checkSchema(updated); err != nil {
		if _, isString := value.(string); isString {
			return fmt.Errorf("invalid value for %q: %w", key, err)
		}
		updated, err = sjson.SetBytes(existing, key, fmt.Sprint(value))
		if err != nil {
			return fmt.Errorf("setting key %q: %w", key, err)
		}
		if err := checkSchema(updated); err != nil {
			return fmt.Errorf("invalid value for %q: %w", key, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, updated, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// checkSchema reports whether data still decodes into a Config.
func checkSchema(data []byte) error {
	var cfg Config
	return json.Unmarshal(data, &cfg)
}

// AddProject registers a working copy for project in the file at path.
func AddProject(path, project string, p ProjectConfig) error {
	if p.Remote == "" {
		p.Remote = DefaultRemote
	}
	return Set(path, "projects."+escapeKey(project), p)
}

// escapeKey escapes sjson path metacharacters in a single key segment.
func escapeKey(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}
