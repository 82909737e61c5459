package skills

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/normalize"
	"github.com/jonathan/resume-analyzer/internal/taxonomy"
)

// Punctuation that ends or opens a sentence or clause rather than belonging to
// a skill name. Only symbols the normalizer keeps ever reach a token.
const (
	leadingPunct  = "("
	trailingPunct = ".,:)"
)

// Extractor finds taxonomy skills in normalized text using whole-token
// matching. Its index is built once and only read afterwards, so an Extractor
// is safe for concurrent use.
type Extractor struct {
	normalizer *normalize.Normalizer
	// index maps an entry's normalized token sequence ("ci cd") to its
	// canonical name ("ci/cd").
	index     map[string]string
	maxWindow int
	logger    *zap.Logger
}

// Scan is the outcome of one extraction.
type Scan struct {
	Skills Set
	Tokens int
}

// NewExtractor indexes every taxonomy entry by its normalized token sequence.
// The normalizer must be the one used on the text passed to Extract. It fails
// when an entry normalizes to nothing or two entries normalize to the same
// token sequence, since either would make matching ambiguous.
func NewExtractor(tax *taxonomy.Taxonomy, normalizer *normalize.Normalizer, logger *zap.Logger) (*Extractor, error) {
	if normalizer == nil {
		normalizer = normalize.New(normalize.Options{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Extractor{
		normalizer: normalizer,
		index:      make(map[string]string, tax.Len()),
		logger:     logger,
	}

	for _, entry := range tax.Entries() {
		tokens := e.tokenize(normalizer.Normalize(entry.Name))
		if len(tokens) == 0 {
			return nil, &taxonomy.InvalidEntryError{
				Category: entry.Category,
				Skill:    entry.Name,
				Message:  "normalizes to an empty token sequence",
			}
		}

		key := strings.Join(tokens, " ")
		if other, dup := e.index[key]; dup {
			return nil, &taxonomy.InvalidEntryError{
				Category: entry.Category,
				Skill:    entry.Name,
				Message:  "matches the same tokens as " + other,
			}
		}
		e.index[key] = entry.Name
		e.maxWindow = max(e.maxWindow, len(tokens))
	}

	return e, nil
}

// Extract returns the taxonomy skills present in normalized text. A skill is
// present when its token sequence occurs bounded by the text edges or by
// characters that are neither alphanumeric nor preserved symbols. An empty
// set is a valid result.
func (e *Extractor) Extract(normalized string) Set {
	return e.Scan(normalized).Skills
}

// ExtractText normalizes raw text and extracts skills from it.
func (e *Extractor) ExtractText(raw string) Set {
	return e.Extract(e.normalizer.Normalize(raw))
}

// Scan tokenizes normalized text once and looks up every window of up to
// maxWindow consecutive tokens in the index. A window that misses is retried
// with sentence punctuation stripped from its outer edges, so "kubernetes."
// matches while "node.js" and "c++" are still looked up whole first.
func (e *Extractor) Scan(normalized string) Scan {
	tokens := e.tokenize(normalized)
	found := make(Set)

	for i := range tokens {
		for w := 1; w <= e.maxWindow && i+w <= len(tokens); w++ {
			window := tokens[i : i+w]
			if canonical, ok := e.lookup(window); ok {
				found[canonical] = struct{}{}
			}
		}
	}

	e.logger.Debug("scanned text for skills",
		zap.Int("tokens", len(tokens)),
		zap.Int("skills", len(found)),
	)

	return Scan{Skills: found, Tokens: len(tokens)}
}

func (e *Extractor) lookup(window []string) (string, bool) {
	if canonical, ok := e.index[strings.Join(window, " ")]; ok {
		return canonical, true
	}

	first := strings.TrimLeft(window[0], leadingPunct)
	last := strings.TrimRight(window[len(window)-1], trailingPunct)
	if len(window) == 1 {
		last = strings.TrimRight(first, trailingPunct)
		first = last
	}
	if first == "" || last == "" {
		return "", false
	}
	if first == window[0] && last == window[len(window)-1] {
		return "", false
	}

	trimmed := make([]string, len(window))
	copy(trimmed, window)
	trimmed[0] = first
	trimmed[len(trimmed)-1] = last
	canonical, ok := e.index[strings.Join(trimmed, " ")]
	return canonical, ok
}

// tokenize splits on every character that is not kept by the normalizer,
// which is exactly the whole-token boundary.
func (e *Extractor) tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !e.normalizer.IsKept(r)
	})
}
