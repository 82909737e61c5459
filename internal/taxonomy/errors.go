package taxonomy

import "fmt"

// InvalidEntryError reports a malformed taxonomy definition. It is a start-up
// failure: a taxonomy is never modified once built.
type InvalidEntryError struct {
	Category string
	Skill    string
	Message  string
}

func (e *InvalidEntryError) Error() string {
	switch {
	case e.Skill != "":
		return fmt.Sprintf("invalid taxonomy entry %q in category %q: %s", e.Skill, e.Category, e.Message)
	case e.Category != "":
		return fmt.Sprintf("invalid taxonomy category %q: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("invalid taxonomy: %s", e.Message)
}
