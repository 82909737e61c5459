// Package skills extracts canonical taxonomy skills from normalized text.
package skills

import "sort"

// Set is a duplicate-free collection of canonical skill names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of skills.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the skills in lexicographic order. The result is never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
