package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/alanmeadows/pullstatus/internal/sla"
)

// Config is the top-level pullstatus configuration.
type Config struct {
	Projects    map[string]ProjectConfig `json:"projects"`
	Maintainers []string                 `json:"maintainers"`
	GitHub      GitHubConfig             `json:"github"`
	SLA         SLAConfig                `json:"sla"`
	Overview    OverviewConfig           `json:"overview"`
	Cruise      CruiseConfig             `json:"cruise"`

	// Path is the user-level file this configuration was loaded from.
	Path string `json:"-"`
	// found records whether any configuration file was read.
	found bool
}

// ProjectConfig maps a project ("owner/repo") to its local working copy.
type ProjectConfig struct {
	Path   string `json:"path"`
	Remote string `json:"remote,omitempty"`
}

// GitHubConfig holds hosting API settings.
type GitHubConfig struct {
	Token          string `json:"token,omitempty"`
	BaseURL        string `json:"base_url,omitempty"`
	RequestTimeout string `json:"request_timeout"`
}

// ParseRequestTimeout returns the per-request timeout as a time.Duration.
func (g GitHubConfig) ParseRequestTimeout() time.Duration {
	d, err := time.ParseDuration(g.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SLAConfig holds the review windows.
type SLAConfig struct {
	FirstReview string `json:"first_review"`
	ReReview    string `json:"re_review"`
}

// ParseFirstReview returns the window for a pull request that was never reviewed.
func (s SLAConfig) ParseFirstReview() time.Duration {
	d, err := time.ParseDuration(s.FirstReview)
	if err != nil || d <= 0 {
		return sla.DefaultFirstReview
	}
	return d
}

// ParseReReview returns the window for a pull request that was reviewed before.
func (s SLAConfig) ParseReReview() time.Duration {
	d, err := time.ParseDuration(s.ReReview)
	if err != nil || d <= 0 {
		return sla.DefaultReReview
	}
	return d
}

// Policy returns the configured SLA policy.
func (s SLAConfig) Policy() sla.Policy {
	return sla.Policy{
		FirstReview: s.ParseFirstReview(),
		ReReview:    s.ParseReReview(),
	}
}

// OverviewConfig holds batch overview settings.
type OverviewConfig struct {
	Repos       []string `json:"repos"`
	MaxAge      string   `json:"max_age"`
	Parallelism int      `json:"parallelism"`
}

// ParseMaxAge returns how recently a pull request must have been updated to be listed.
func (o OverviewConfig) ParseMaxAge() time.Duration {
	d, err := time.ParseDuration(o.MaxAge)
	if err != nil || d <= 0 {
		return 14 * 24 * time.Hour
	}
	return d
}

// EffectiveParallelism returns the fan-out limit, at least 1.
func (o OverviewConfig) EffectiveParallelism() int {
	if o.Parallelism < 1 {
		return 8
	}
	return o.Parallelism
}

// CruiseConfig holds CI report settings.
type CruiseConfig struct {
	URLPattern string `json:"url_pattern"`
	Timeout    string `json:"timeout"`
}

// ParseTimeout returns the report download timeout.
func (c CruiseConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CompileURLPattern compiles the report URL pattern.
func (c CruiseConfig) CompileURLPattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(c.URLPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid cruise.url_pattern %q: %w", c.URLPattern, err)
	}
	return re, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Projects:    make(map[string]ProjectConfig),
		Maintainers: []string{},
		GitHub: GitHubConfig{
			RequestTimeout: "30s",
		},
		SLA: SLAConfig{
			FirstReview: "48h",
			ReReview:    "24h",
		},
		Overview: OverviewConfig{
			Repos:       []string{},
			MaxAge:      "336h",
			Parallelism: 8,
		},
		Cruise: CruiseConfig{
			URLPattern: `http://cruise\S+`,
			Timeout:    "30s",
		},
	}
}
