package oauth

import (
	"slices"
	"strings"
)

// ScopeSet is a set of granted scopes.
type ScopeSet map[string]struct{}

// ParseScope splits a space-delimited scope claim. An empty string gives an
// empty, non-nil set.
func ParseScope(s string) ScopeSet {
	fields := strings.Fields(s)
	set := make(ScopeSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s ScopeSet) Has(scope string) bool {
	_, ok := s[scope]
	return ok
}

// Slice returns the scopes sorted.
func (s ScopeSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// String renders the set in claim form.
func (s ScopeSet) String() string {
	return strings.Join(s.Slice(), " ")
}

// Intersect returns the scopes present in both sets.
func (s ScopeSet) Intersect(other ScopeSet) ScopeSet {
	out := make(ScopeSet)
	for k := range s {
		if other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}
