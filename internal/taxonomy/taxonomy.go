// Package taxonomy holds the fixed reference table of canonical skill names.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups related skills, e.g. "languages" or "databases".
type Category struct {
	Name   string   `json:"name" yaml:"name"`
	Skills []string `json:"skills" yaml:"skills"`
}

// Entry is one canonical skill and the category it was declared in.
type Entry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Taxonomy is an immutable set of canonical skills. It is built once at
// start-up and shared read-only by every analysis.
type Taxonomy struct {
	entries    []Entry
	index      map[string]int
	categories []string
}

// New builds a Taxonomy from categories. Skill names are trimmed and must be
// lowercase, non-empty and unique across all categories.
func New(categories []Category) (*Taxonomy, error) {
	t := &Taxonomy{index: make(map[string]int)}
	seenCategory := make(map[string]bool)

	for _, cat := range categories {
		catName := strings.TrimSpace(cat.Name)
		if catName == "" {
			return nil, &InvalidEntryError{Message: "category name is empty"}
		}
		if seenCategory[catName] {
			return nil, &InvalidEntryError{Category: catName, Message: "duplicate category"}
		}
		seenCategory[catName] = true
		t.categories = append(t.categories, catName)

		for _, raw := range cat.Skills {
			name := strings.TrimSpace(raw)
			switch {
			case name == "":
				return nil, &InvalidEntryError{Category: catName, Message: "skill name is empty"}
			case name != strings.ToLower(name):
				return nil, &InvalidEntryError{Category: catName, Skill: raw, Message: "skill name must be lowercase"}
			}
			if idx, dup := t.index[name]; dup {
				return nil, &InvalidEntryError{
					Category: catName,
					Skill:    name,
					Message:  fmt.Sprintf("duplicate skill, already declared in %q", t.entries[idx].Category),
				}
			}
			t.index[name] = len(t.entries)
			t.entries = append(t.entries, Entry{Name: name, Category: catName})
		}
	}

	if len(t.entries) == 0 {
		return nil, &InvalidEntryError{Message: "taxonomy has no skills"}
	}

	return t, nil
}

// Contains reports whether name is a canonical skill.
func (t *Taxonomy) Contains(name string) bool {
	_, ok := t.index[name]
	return ok
}

// CategoryOf returns the category of a canonical skill.
func (t *Taxonomy) CategoryOf(name string) (string, bool) {
	idx, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.entries[idx].Category, true
}

// Len returns the number of canonical skills.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Entries returns a copy of all entries in declaration order.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns all canonical skill names sorted lexicographically.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

// Categories returns the category names in declaration order.
func (t *Taxonomy) Categories() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

// Grouped returns the taxonomy as categories with sorted skill lists.
func (t *Taxonomy) Grouped() []Category {
	byName := make(map[string]*Category, len(t.categories))
	out := make([]Category, len(t.categories))
	for i, name := range t.categories {
		out[i] = Category{Name: name, Skills: []string{}}
		byName[name] = &out[i]
	}
	for _, e := range t.entries {
		c := byName[e.Category]
		c.Skills = append(c.Skills, e.Name)
	}
	for i := range out {
		sort.Strings(out[i].Skills)
	}
	return out
}
