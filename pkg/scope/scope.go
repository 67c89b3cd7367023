// Package scope computes which databases of an instance are backed up.
//
// The precedence is fixed: a non-empty whitelist selects databases and the
// blacklist is ignored; otherwise every available database minus the
// blacklist is selected. System databases are removed last, even when they
// were whitelisted.
package scope

import "slices"

// DefaultSystemExclusions are never backed up.
var DefaultSystemExclusions = []string{
	"information_schema",
	"mysql",
	"performance_schema",
	"postgres",
	"sys",
	"template0",
	"template1",
}

// Set is an unordered set of database names.
type Set map[string]struct{}

// NewSet builds a Set from names, ignoring empty strings.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if name != "" {
			s[name] = struct{}{}
		}
	}
	return s
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// EffectiveScope returns the databases to back up.
func EffectiveScope(available, whitelist, blacklist, systemExclusions Set) Set {
	candidate := make(Set, len(available))
	if len(whitelist) > 0 {
		for name := range whitelist {
			if available.Has(name) {
				candidate[name] = struct{}{}
			}
		}
	} else {
		for name := range available {
			if !blacklist.Has(name) {
				candidate[name] = struct{}{}
			}
		}
	}

	for name := range systemExclusions {
		delete(candidate, name)
	}
	return candidate
}

// Rule is the declared scope of one instance.
type Rule struct {
	InstanceID       string
	Whitelist        Set
	Blacklist        Set
	SystemExclusions Set
}

// NewRule builds a Rule whose system exclusions are the defaults plus
// extraExclusions.
func NewRule(instanceID string, whitelist, blacklist, extraExclusions []string) Rule {
	exclusions := NewSet(DefaultSystemExclusions...)
	for _, name := range extraExclusions {
		if name != "" {
			exclusions[name] = struct{}{}
		}
	}
	return Rule{
		InstanceID:       instanceID,
		Whitelist:        NewSet(whitelist...),
		Blacklist:        NewSet(blacklist...),
		SystemExclusions: exclusions,
	}
}

// Result is the outcome of applying a Rule.
type Result struct {
	InstanceID string
	Databases  []string
	// MissingWhitelisted lists whitelist entries the server doesn't have.
	// They are dropped silently; callers should warn about them.
	MissingWhitelisted []string
	// ExcludedWhitelisted lists whitelist entries removed as system databases.
	ExcludedWhitelisted []string
}

// Apply computes the effective scope of the rule against the databases
// currently on the server.
func (r Rule) Apply(available []string) Result {
	live := NewSet(available...)
	result := Result{
		InstanceID: r.InstanceID,
		Databases:  EffectiveScope(live, r.Whitelist, r.Blacklist, r.SystemExclusions).Sorted(),
	}

	for _, name := range r.Whitelist.Sorted() {
		switch {
		case !live.Has(name):
			result.MissingWhitelisted = append(result.MissingWhitelisted, name)
		case r.SystemExclusions.Has(name):
			result.ExcludedWhitelisted = append(result.ExcludedWhitelisted, name)
		}
	}
	return result
}
