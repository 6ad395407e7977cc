package provider

import "fmt"

// Registry holds the configured HostingAPI backends and picks the one that
// serves a given pull request URL.
type Registry struct {
	backends []HostingAPI
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a backend to the registry.
func (r *Registry) Register(b HostingAPI) {
	r.backends = append(r.backends, b)
}

// Detect returns the first registered backend whose MatchesURL accepts url.
func (r *Registry) Detect(url string) (HostingAPI, error) {
	for _, b := range r.backends {
		if b.MatchesURL(url) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no registered backend matches URL: %s", url)
}
