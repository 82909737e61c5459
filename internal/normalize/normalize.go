// Package normalize canonicalizes free text into the flat lowercase form used
// for skill matching.
package normalize

import "strings"

// preservedSymbols are kept because they occur inside multi-character skill
// tokens such as "c++", "c#", "node.js" and "objective-c".
const preservedSymbols = ".-+#@"

// extendedSymbols are additionally kept when Options.ExtendedSymbols is set.
const extendedSymbols = ":,()"

// Options configures a Normalizer.
type Options struct {
	// ExtendedSymbols keeps ':', ',', '(' and ')' in addition to the base set.
	ExtendedSymbols bool
}

// Normalizer converts text into NormalizedText. The zero value uses the base
// preserved-symbol set. A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	keep string
}

// New creates a Normalizer with the given options.
func New(opts Options) *Normalizer {
	keep := preservedSymbols
	if opts.ExtendedSymbols {
		keep += extendedSymbols
	}
	return &Normalizer{keep: keep}
}

// Normalize lowercases text, replaces every character outside [a-z0-9] and the
// preserved set with a space, collapses whitespace runs into a single space and
// trims the result. Empty or whitespace-only input yields "".
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(text))

	// pendingSpace defers writing a separator until the next kept character so
	// runs collapse and no leading or trailing space is emitted.
	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		if n.isKept(r) {
			if pendingSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			sb.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return sb.String()
}

// IsKept reports whether r survives normalization unchanged.
func (n *Normalizer) IsKept(r rune) bool {
	return n.isKept(r)
}

func (n *Normalizer) isKept(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune(n.symbols(), r)
}

func (n *Normalizer) symbols() string {
	if n == nil || n.keep == "" {
		return preservedSymbols
	}
	return n.keep
}

// Normalize normalizes text with the base preserved-symbol set.
func Normalize(text string) string {
	return (&Normalizer{}).Normalize(text)
}
