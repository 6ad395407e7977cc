package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the user config dir at a temp dir and leaves any enclosing
// git repository so no repo-level config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	userConfigDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userConfigDir)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("PULLSTATUS_MAINTAINERS", "")
	t.Chdir(t.TempDir())
	return userConfigDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GitHub.ParseRequestTimeout() != 30*time.Second {
		t.Errorf("expected request timeout 30s, got %v", cfg.GitHub.ParseRequestTimeout())
	}
	if cfg.SLA.ParseFirstReview() != 48*time.Hour {
		t.Errorf("expected first review window 48h, got %v", cfg.SLA.ParseFirstReview())
	}
	if cfg.SLA.ParseReReview() != 24*time.Hour {
		t.Errorf("expected re-review window 24h, got %v", cfg.SLA.ParseReReview())
	}
	if cfg.Overview.ParseMaxAge() != 14*24*time.Hour {
		t.Errorf("expected max age 14 days, got %v", cfg.Overview.ParseMaxAge())
	}
	if cfg.Overview.EffectiveParallelism() != 8 {
		t.Errorf("expected parallelism 8, got %d", cfg.Overview.EffectiveParallelism())
	}
	re, err := cfg.Cruise.CompileURLPattern()
	if err != nil {
		t.Fatalf("default url pattern does not compile: %v", err)
	}
	if got := re.FindString("see http://cruise.example/42 now"); got != "http://cruise.example/42" {
		t.Errorf("expected default pattern to match cruise URL, got %q", got)
	}
}

func TestDurationFallbacks(t *testing.T) {
	if (SLAConfig{FirstReview: "soon"}).ParseFirstReview() != 48*time.Hour {
		t.Error("expected fallback to 48h for invalid first_review")
	}
	if (SLAConfig{ReReview: "-1h"}).ParseReReview() != 24*time.Hour {
		t.Error("expected fallback to 24h for negative re_review")
	}
	if (GitHubConfig{RequestTimeout: "bad"}).ParseRequestTimeout() != 30*time.Second {
		t.Error("expected fallback to 30s for invalid request_timeout")
	}
	if (CruiseConfig{Timeout: ""}).ParseTimeout() != 30*time.Second {
		t.Error("expected fallback to 30s for empty cruise timeout")
	}
	if (OverviewConfig{Parallelism: 0}).EffectiveParallelism() != 8 {
		t.Error("expected fallback to 8 for zero parallelism")
	}

	p := SLAConfig{FirstReview: "72h", ReReview: "12h"}.Policy()
	if p.FirstReview != 72*time.Hour || p.ReReview != 12*time.Hour {
		t.Errorf("unexpected policy %+v", p)
	}
}

func TestCompileURLPattern_Invalid(t *testing.T) {
	_, err := CruiseConfig{URLPattern: "("}.CompileURLPattern()
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
	if !strings.Contains(err.Error(), "cruise.url_pattern") {
		t.Errorf("expected error to name the setting, got %v", err)
	}
}

func TestLoadJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonc")
	writeFile(t, path, `{
  // This is a JSONC comment
  "maintainers": ["kostia"],
  "overview": {
    "parallelism": 3, // trailing comment
  }
}`)

	m, err := loadJSONC(path)
	if err != nil {
		t.Fatalf("loadJSONC failed: %v", err)
	}

	maintainers, ok := m["maintainers"].([]any)
	if !ok || len(maintainers) != 1 || maintainers[0] != "kostia" {
		t.Errorf("expected maintainers=[kostia], got %v", m["maintainers"])
	}
	overview, ok := m["overview"].(map[string]any)
	if !ok {
		t.Fatal("expected overview to be a map")
	}
	if overview["parallelism"] != float64(3) {
		t.Errorf("expected parallelism=3, got %v", overview["parallelism"])
	}
}

func TestLoadJSONC_MalformedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonc")
	writeFile(t, path, `{"projects": {"a/b": {"path": "/x"`)

	if _, err := loadJSONC(path); err == nil {
		t.Error("expected error for malformed JSONC")
	}
}

func TestMergeDeepPreservesNestedFields(t *testing.T) {
	cfg := DefaultConfig()

	src := map[string]any{
		"sla": map[string]any{
			"first_review": "72h",
		},
		"overview": map[string]any{
			"parallelism": json.Number("2"),
		},
	}
	if err := mergeIntoConfig(&cfg, src); err != nil {
		t.Fatalf("mergeIntoConfig failed: %v", err)
	}

	if cfg.SLA.FirstReview != "72h" {
		t.Errorf("expected first_review=72h, got %s", cfg.SLA.FirstReview)
	}
	if cfg.SLA.ReReview != "24h" {
		t.Errorf("expected re_review preserved as 24h, got %s", cfg.SLA.ReReview)
	}
	if cfg.Overview.Parallelism != 2 {
		t.Errorf("expected parallelism=2, got %d", cfg.Overview.Parallelism)
	}
	if cfg.Overview.MaxAge != "336h" {
		t.Errorf("expected max_age preserved as 336h, got %s", cfg.Overview.MaxAge)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("GITHUB_TOKEN", "gh-token-456")
	t.Setenv("PULLSTATUS_MAINTAINERS", " kostia, krishan ,,")

	applyEnvOverrides(&cfg)

	if cfg.GitHub.Token != "gh-token-456" {
		t.Errorf("expected GitHub token=gh-token-456, got %s", cfg.GitHub.Token)
	}
	if strings.Join(cfg.Maintainers, ",") != "kostia,krishan" {
		t.Errorf("expected maintainers kostia,krishan, got %v", cfg.Maintainers)
	}
}

func TestLoad_UserConfig(t *testing.T) {
	userConfigDir := isolate(t)
	work := t.TempDir()

	writeFile(t, filepath.Join(userConfigDir, "pullstatus", "pullstatus.jsonc"), `{
  "projects": {"acme/widgets": {"path": "`+work+`"}},
  "sla": {"re_review": "6h"}
}`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SLA.ParseReReview() != 6*time.Hour {
		t.Errorf("expected re_review=6h, got %v", cfg.SLA.ParseReReview())
	}
	if cfg.SLA.ParseFirstReview() != 48*time.Hour {
		t.Errorf("expected default first_review preserved, got %v", cfg.SLA.ParseFirstReview())
	}

	wc, err := cfg.WorkingCopy("acme/widgets")
	if err != nil {
		t.Fatalf("WorkingCopy failed: %v", err)
	}
	if wc.Path != work {
		t.Errorf("expected path %s, got %s", work, wc.Path)
	}
	if wc.Remote != DefaultRemote {
		t.Errorf("expected default remote, got %s", wc.Remote)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.jsonc")
	writeFile(t, path, `{"maintainers": ["bob"]}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("expected Path=%s, got %s", path, cfg.Path)
	}
	if len(cfg.Maintainers) != 1 || cfg.Maintainers[0] != "bob" {
		t.Errorf("expected maintainers [bob], got %v", cfg.Maintainers)
	}
}

func TestLoad_MalformedUserConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	writeFile(t, path, `{"maintainers": [`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed user config")
	}
}

func TestWorkingCopy_Errors(t *testing.T) {
	isolate(t)
	missingFile := filepath.Join(t.TempDir(), "missing.jsonc")

	present := filepath.Join(t.TempDir(), "present.jsonc")
	writeFile(t, present, `{"projects": {
  "acme/empty": {"path": ""},
  "acme/gone": {"path": "/definitely/not/here"}
}}`)

	tests := []struct {
		name    string
		path    string
		project string
		reason  string
	}{
		{name: "missing file", path: missingFile, project: "acme/widgets", reason: "configuration file not found"},
		{name: "missing entry", path: present, project: "acme/widgets", reason: "no working copy configured"},
		{name: "empty path", path: present, project: "acme/empty", reason: "path is empty"},
		{name: "nonexistent path", path: present, project: "acme/gone", reason: "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			_, err = cfg.WorkingCopy(tt.project)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %v", err)
			}
			if cfgErr.Path != tt.path {
				t.Errorf("expected error to name %s, got %s", tt.path, cfgErr.Path)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("expected message to contain the file path, got %q", err.Error())
			}
			if !strings.Contains(cfgErr.Reason, tt.reason) {
				t.Errorf("expected reason containing %q, got %q", tt.reason, cfgErr.Reason)
			}
		})
	}
}

func TestSetAndAddProject(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "pullstatus.jsonc")

	if err := Set(path, "sla.first_review", ParseValue("72h")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Set(path, "overview.parallelism", ParseValue("4")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	work := t.TempDir()
	if err := AddProject(path, "acme/widgets.js", ProjectConfig{Path: work}); err != nil {
		t.Fatalf("AddProject failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SLA.FirstReview != "72h" {
		t.Errorf("expected first_review=72h, got %s", cfg.SLA.FirstReview)
	}
	if cfg.Overview.Parallelism != 4 {
		t.Errorf("expected parallelism=4, got %d", cfg.Overview.Parallelism)
	}
	p, ok := cfg.Projects["acme/widgets.js"]
	if !ok {
		t.Fatalf("expected project entry, got %v", cfg.Projects)
	}
	if p.Path != work || p.Remote != DefaultRemote {
		t.Errorf("unexpected project %+v", p)
	}
}

func TestSet_FieldTypes(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "pullstatus.jsonc")

	if err := Set(path, "overview.parallelism", ParseValue("4")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// A bare number for a duration field is stored as a string.
	if err := Set(path, "overview.max_age", ParseValue("336")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := Set(path, "overview.parallelism", ParseValue("many")); err == nil {
		t.Error("expected error for a string in an integer field")
	}
	if err := Set(path, "maintainers", ParseValue("true")); err == nil {
		t.Error("expected error for a bool in a list field")
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed after rejected edits: %v", err)
	}
	if cfg.Overview.MaxAge != "336" {
		t.Errorf("expected max_age=\"336\", got %q", cfg.Overview.MaxAge)
	}
	if cfg.Overview.Parallelism != 4 {
		t.Errorf("expected parallelism to stay 4, got %d", cfg.Overview.Parallelism)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"42", int64(42)},
		{"1.5", 1.5},
		{"48h", "48h"},
	}
	for _, tt := range tests {
		if got := ParseValue(tt.raw); got != tt.want {
			t.Errorf("ParseValue(%q) = %v (%T), want %v (%T)", tt.raw, got, got, tt.want, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandHome("~/src/repo"); got != filepath.Join(home, "src", "repo") {
		t.Errorf("expected expansion under home, got %s", got)
	}
	if got := expandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("expected absolute path unchanged, got %s", got)
	}
}
