package cli

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alanmeadows/pullstatus/internal/config"
	"github.com/alanmeadows/pullstatus/internal/provider"
	ghbackend "github.com/alanmeadows/pullstatus/internal/provider/github"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

// newGitHubBackend creates the hosting API client. The token comes from the
// config (or GITHUB_TOKEN), falling back to the gh CLI.
func newGitHubBackend(cfg *config.Config) (*ghbackend.Backend, error) {
	token := cfg.GitHub.Token
	if token == "" {
		if out, err := exec.Command("gh", "auth", "token").Output(); err == nil {
			token = strings.TrimSpace(string(out))
		}
	}
	if token == "" {
		return nil, fmt.Errorf("no GitHub token: set GITHUB_TOKEN, github.token in %s, or log in with 'gh auth login'", cfg.Path)
	}
	return ghbackend.NewBackend(token, cfg.GitHub.BaseURL, cfg.GitHub.ParseRequestTimeout())
}

// buildRegistry creates a provider registry holding the configured backends.
func buildRegistry(backends ...provider.HostingAPI) *provider.Registry {
	reg := provider.NewRegistry()
	for _, b := range backends {
		reg.Register(b)
	}
	return reg
}

func validateOutput(format string) error {
	switch format {
	case outputText, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputText, outputYAML)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}
