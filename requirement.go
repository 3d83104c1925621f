package commands

import (
	"sort"
	"strings"
)

// Requirement is an access predicate evaluated against the dispatch Context.
// Requirements with the same Key are considered equal.
type Requirement interface {
	Key() string
	Meets(c *Context) bool
}

// RequirementSet is an immutable, de-duplicated set of requirements
type RequirementSet struct {
	keys  []string
	byKey map[string]Requirement
}

// NewRequirementSet creates a set from requirements. Nil entries are ignored and the first
// requirement wins when several share a key.
func NewRequirementSet(requirements ...Requirement) RequirementSet {
	s := RequirementSet{byKey: make(map[string]Requirement, len(requirements))}
	for _, r := range requirements {
		if r == nil {
			continue
		}
		if _, found := s.byKey[r.Key()]; found {
			continue
		}
		s.byKey[r.Key()] = r
		s.keys = append(s.keys, r.Key())
	}
	sort.Strings(s.keys)

	return s
}

// Union returns a new set holding the requirements of both sets
func (s RequirementSet) Union(other RequirementSet) RequirementSet {
	all := make([]Requirement, 0, s.Len()+other.Len())
	all = append(all, s.Requirements()...)
	all = append(all, other.Requirements()...)

	return NewRequirementSet(all...)
}

// IsEmpty reports whether the set holds no requirement
func (s RequirementSet) IsEmpty() bool {
	return len(s.keys) == 0
}

// Len returns the number of requirements
func (s RequirementSet) Len() int {
	return len(s.keys)
}

// Has reports whether a requirement with key is part of the set
func (s RequirementSet) Has(key string) bool {
	_, found := s.byKey[key]
	return found
}

// Requirements returns the requirements ordered by key
func (s RequirementSet) Requirements() []Requirement {
	out := make([]Requirement, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.byKey[k])
	}

	return out
}

// Equal reports whether both sets hold the same keys
func (s RequirementSet) Equal(other RequirementSet) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for i := range s.keys {
		if s.keys[i] != other.keys[i] {
			return false
		}
	}

	return true
}

// Key identifies the set. Equal sets have equal keys.
func (s RequirementSet) Key() string {
	return strings.Join(s.keys, "\x00")
}

// Meets evaluates every requirement and returns the first one failing. An empty set always matches.
func (s RequirementSet) Meets(c *Context) (Requirement, bool) {
	for _, k := range s.keys {
		if r := s.byKey[k]; !r.Meets(c) {
			return r, false
		}
	}

	return nil, true
}

func (s RequirementSet) String() string {
	return "{" + strings.Join(s.keys, ", ") + "}"
}
