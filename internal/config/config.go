package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// DefaultRemote is used for projects that do not name a remote.
const DefaultRemote = "origin"

// ConfigurationError reports a missing or incomplete project mapping.
type ConfigurationError struct {
	// Path is the configuration file expected to hold the mapping.
	Path    string
	Project string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("%s: project %s: %s", e.Path, e.Project, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// UserConfigPath returns the user-level configuration file path
// (~/.config/pullstatus/pullstatus.jsonc on Linux).
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(dir, "pullstatus", "pullstatus.jsonc"), nil
}

// Load reads and merges configuration from user-level and repo-level JSONC files.
// Resolution order: user config (path, or UserConfigPath when empty) → deep-merged
// with repo config (.pullstatus/pullstatus.jsonc) → environment overrides.
// Missing files are not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		path, err = UserConfigPath()
		if err != nil {
			return nil, err
		}
	}
	cfg.Path = path

	userMap, err := loadJSONC(path)
	switch {
	case err == nil:
		if err := mergeIntoConfig(&cfg, userMap); err != nil {
			return nil, fmt.Errorf("merging user config: %w", err)
		}
		cfg.found = true
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	// Load repo-level config
	if repoRoot := findRepoRoot(); repoRoot != "" {
		repoPath := filepath.Join(repoRoot, ".pullstatus", "pullstatus.jsonc")
		if repoMap, err := loadJSONC(repoPath); err == nil {
			if err := mergeIntoConfig(&cfg, repoMap); err != nil {
				return nil, fmt.Errorf("merging repo config: %w", err)
			}
			cfg.found = true
		}
	}

	// Environment variable overrides
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// WorkingCopy returns the local working copy registered for project.
// The returned path has "~" expanded and is known to exist.
func (c *Config) WorkingCopy(project string) (ProjectConfig, error) {
	p, ok := c.Projects[project]
	if !ok {
		reason := "no working copy configured"
		if !c.found {
			reason = "configuration file not found"
		}
		return ProjectConfig{}, &ConfigurationError{Path: c.Path, Project: project, Reason: reason}
	}
	if p.Path == "" {
		return ProjectConfig{}, &ConfigurationError{Path: c.Path, Project: project, Reason: "path is empty"}
	}

	p.Path = expandHome(p.Path)
	info, err := os.Stat(p.Path)
	if err != nil || !info.IsDir() {
		return ProjectConfig{}, &ConfigurationError{
			Path:    c.Path,
			Project: project,
			Reason:  fmt.Sprintf("working copy %s does not exist", p.Path),
		}
	}
	if p.Remote == "" {
		p.Remote = DefaultRemote
	}
	return p, nil
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map over it,
// then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	// Deep merge: src overrides dst
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// findRepoRoot finds the git repository root via git rev-parse.
func findRepoRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if list := os.Getenv("PULLSTATUS_MAINTAINERS"); list != "" {
		var maintainers []string
		for _, m := range strings.Split(list, ",") {
			if m = strings.TrimSpace(m); m != "" {
				maintainers = append(maintainers, m)
			}
		}
		cfg.Maintainers = maintainers
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// RepoRoot returns the detected git repository root, or empty string if not in a repo.
func RepoRoot() string {
	return findRepoRoot()
}
