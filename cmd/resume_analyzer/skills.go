package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/taxonomy"
	"github.com/jonathan/resume-analyzer/internal/types"
)

func newSkillsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect the skill taxonomy and extract skills from text",
	}
	cmd.AddCommand(newSkillsListCmd(a), newSkillsExtractCmd(a))
	return cmd
}

func newSkillsListCmd(a *app) *cobra.Command {
	var (
		category   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the canonical skills by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups := a.taxonomy.Grouped()
			if category != "" {
				filtered, err := filterCategory(groups, category)
				if err != nil {
					return err
				}
				groups = filtered
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				total := 0
				for _, g := range groups {
					total += len(g.Skills)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(types.SkillsResponse{
					Total:      total,
					Categories: groups,
					Thresholds: matching.Thresholds(),
				})
			}

			names := a.taxonomy.Names()
			if category != "" {
				names = groups[0].Skills
			}
			observability.NewPrinter(out).ShowAll().PrintSkills("SKILL TAXONOMY", names, a.taxonomy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list skills in this category")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the taxonomy as JSON")
	return cmd
}

func filterCategory(groups []taxonomy.Category, name string) ([]taxonomy.Category, error) {
	for _, g := range groups {
		if strings.EqualFold(g.Name, name) {
			return []taxonomy.Category{g}, nil
		}
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return nil, fmt.Errorf("unknown category %q (available: %s)", name, strings.Join(names, ", "))
}

func newSkillsExtractCmd(a *app) *cobra.Command {
	var (
		text       string
		path       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract canonical skills from text or a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path != "" {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				name := filepath.Base(path)
				res, err := extraction.New(a.log).Extract(extraction.Document{
					Name:    name,
					Format:  extraction.FormatFromFilename(name),
					Content: content,
				})
				if err != nil {
					return err
				}
				text = res.Text
			}

			found := a.skills.ExtractText(text).Sorted()

			out := cmd.OutOrStdout()
			if jsonOutput {
				return json.NewEncoder(out).Encode(found)
			}
			observability.NewPrinter(out).ShowAll().PrintSkills("EXTRACTED SKILLS", found, a.taxonomy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to scan")
	cmd.Flags().StringVarP(&path, "file", "f", "", "Document to scan (.pdf, .txt or .html)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the skills as a JSON array")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	cmd.MarkFlagsOneRequired("text", "file")
	return cmd
}
