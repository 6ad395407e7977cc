package review

import (
	"context"
	"fmt"
	"sort"
)

// MaintainerSet is the set of logins allowed to issue authoritative reviews.
type MaintainerSet map[string]struct{}

// NewMaintainerSet builds a set from logins, ignoring empty entries.
func NewMaintainerSet(logins ...string) MaintainerSet {
	s := make(MaintainerSet, len(logins))
	for _, l := range logins {
		if l != "" {
			s[l] = struct{}{}
		}
	}
	return s
}

// Contains reports whether login is a maintainer.
func (s MaintainerSet) Contains(login string) bool {
	_, ok := s[login]
	return ok
}

// Logins returns the members in sorted order.
func (s MaintainerSet) Logins() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// MaintainerSource yields the maintainer set for a run.
type MaintainerSource interface {
	Maintainers(ctx context.Context) (MaintainerSet, error)
}

// StaticMaintainers is a configured allow-list.
type StaticMaintainers []string

// Maintainers returns the allow-list as a set.
func (s StaticMaintainers) Maintainers(context.Context) (MaintainerSet, error) {
	return NewMaintainerSet(s...), nil
}

// Identity resolves the login of the authenticated API caller.
type Identity interface {
	CurrentUser(ctx context.Context) (string, error)
}

// ViewerMaintainers makes the authenticated API caller the only maintainer.
type ViewerMaintainers struct {
	API Identity
}

// Maintainers returns a single-element set holding the caller's login.
func (v ViewerMaintainers) Maintainers(ctx context.Context) (MaintainerSet, error) {
	login, err := v.API.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving maintainer from authenticated user: %w", err)
	}
	return NewMaintainerSet(login), nil
}

// SourceFor picks the static allow-list when it is non-empty, and the
// authenticated caller otherwise.
func SourceFor(allowList []string, api Identity) MaintainerSource {
	if len(allowList) > 0 {
		return StaticMaintainers(allowList)
	}
	return ViewerMaintainers{API: api}
}
