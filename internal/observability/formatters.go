// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/taxonomy"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the number of cells in the percentage bar
	barWidth = 40
)

// Printer handles formatted output for the CLI
type Printer struct {
	out      io.Writer
	maxItems int
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, maxItems: maxItemsToShow}
}

// ShowAll disables list truncation.
func (p *Printer) ShowAll() *Printer {
	p.maxItems = 0
	return p
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// %-*s pads by runes, so measure the same way
		r := []rune(line)
		if len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes a bulleted list honoring the item limit.
func (p *Printer) writeList(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	count := len(items)
	if p.maxItems > 0 {
		count = min(count, p.maxItems)
	}
	for _, item := range items[:count] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if count < len(items) {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-count)
	}
}

// bar renders a percentage in [0, 100] as a fixed-width gauge.
func bar(percentage float64) string {
	filled := int(percentage * barWidth / 100)
	filled = max(0, min(barWidth, filled))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

// PrintMatchResult outputs the outcome of one analysis.
func (p *Printer) PrintMatchResult(result *matching.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Match:    %.2f%% (%s)\n", result.MatchPercentage, result.MatchLevel)
	fmt.Fprintf(&sb, "%s\n\n", bar(result.MatchPercentage))
	fmt.Fprintf(&sb, "Resume skills:   %d\n", result.ResumeSkillsCount)
	fmt.Fprintf(&sb, "Required skills: %d\n\n", result.RequiredSkillsCount)

	fmt.Fprintf(&sb, "Matched (%d):\n", result.MatchedCount)
	p.writeList(&sb, result.MatchedSkills)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Missing (%d):\n", result.MissingCount)
	p.writeList(&sb, result.MissingSkills)

	p.printBox("SKILL MATCH", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkills outputs extracted skills grouped by taxonomy category.
// Skills the taxonomy does not know are listed under "other".
func (p *Printer) PrintSkills(title string, names []string, tax *taxonomy.Taxonomy) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total: %d\n", len(names))

	groups := make(map[string][]string)
	var order []string
	for _, name := range names {
		category := "other"
		if tax != nil {
			if c, ok := tax.CategoryOf(name); ok {
				category = c
			}
		}
		if _, seen := groups[category]; !seen {
			order = append(order, category)
		}
		groups[category] = append(groups[category], name)
	}
	sort.Strings(order)

	for _, category := range order {
		fmt.Fprintf(&sb, "\n%s:\n", category)
		p.writeList(&sb, groups[category])
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHistory outputs stored analyses, newest first.
func (p *Printer) PrintHistory(records []db.AnalysisRecord) {
	var sb strings.Builder
	if len(records) == 0 {
		sb.WriteString("No analyses stored yet")
	}
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s  %s\n", rec.CreatedAt.Local().Format(time.DateTime), rec.ResumeFilename)
		fmt.Fprintf(&sb, "    %.2f%% %s\n", rec.Result.MatchPercentage, rec.Result.MatchLevel)
		fmt.Fprintf(&sb, "    %s\n", rec.ID)
	}
	p.printBox("ANALYSIS HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs aggregate history figures.
func (p *Printer) PrintStats(stats *db.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total analyses:  %d\n", stats.TotalAnalyses)
	fmt.Fprintf(&sb, "Average match:   %.2f%%\n", stats.AverageMatchPercentage)
	if stats.LastAnalysisAt != nil {
		fmt.Fprintf(&sb, "Last analysis:   %s\n", stats.LastAnalysisAt.Local().Format(time.DateTime))
	}
	if len(stats.LevelCounts) > 0 {
		sb.WriteString("\nBy level:\n")
		for _, t := range matching.Thresholds() {
			if n := stats.LevelCounts[string(t.Level)]; n > 0 {
				fmt.Fprintf(&sb, "  %-16s %d\n", t.Level, n)
			}
		}
	}
	p.printBox("HISTORY STATS", strings.TrimSuffix(sb.String(), "\n"))
}
