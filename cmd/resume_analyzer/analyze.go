package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/types"
)

type analyzeOptions struct {
	resumePath string
	jobPath    string
	jobText    string
	jobURL     string
	jsonOutput bool
	save       bool
	showAll    bool
	progress   bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Match a resume against a job description",
		Long: "Extract skills from a PDF or text resume and from a job description, " +
			"then report matched and missing skills with a match percentage.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to the resume (.pdf or .txt)")
	cmd.Flags().StringVarP(&opts.jobPath, "job", "j", "", "Path to a job description file (.txt, .html or .pdf)")
	cmd.Flags().StringVar(&opts.jobText, "job-text", "", "Job description text")
	cmd.Flags().StringVar(&opts.jobURL, "job-url", "", "URL of a job posting to download")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the result in the history store")
	cmd.Flags().BoolVar(&opts.showAll, "all", false, "List every matched and missing skill")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Report each analysis stage on stderr")
	_ = cmd.MarkFlagRequired("resume")
	cmd.MarkFlagsMutuallyExclusive("job", "job-text", "job-url")
	cmd.MarkFlagsOneRequired("job", "job-text", "job-url")

	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, opts analyzeOptions) error {
	ctx := cmd.Context()
	filename := filepath.Base(opts.resumePath)

	if err := types.ValidateFilename(filename); err != nil {
		return err
	}

	jobDescription, err := readJobDescription(ctx, a, opts)
	if err != nil {
		return err
	}
	if err := types.ValidateJobDescription(jobDescription, a.cfg.Analysis.MinJobDescriptionLength); err != nil {
		return err
	}

	content, err := os.ReadFile(opts.resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	analyzer := a.analyzer
	if opts.progress {
		analyzer = a.analyzerWithProgress(progressPrinter(cmd.ErrOrStderr()))
	}

	result, err := analyzer.Analyze(ctx, extraction.Document{
		Name:    filename,
		Format:  extraction.FormatFromFilename(filename),
		Content: content,
	}, jobDescription)
	if err != nil {
		return err
	}

	var analysisID string
	if opts.save {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		rec, err := store.SaveAnalysis(ctx, filename, result)
		if err != nil {
			return fmt.Errorf("failed to save analysis: %w", err)
		}
		analysisID = rec.ID.String()
		logger.WithFields(a.log, zap.String(logger.FieldAnalysisID, analysisID)).
			Debug("saved analysis", zap.String(logger.FieldFilename, filename))
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(types.AnalyzeResponse{Success: true, Result: result, AnalysisID: analysisID})
	}

	printer := observability.NewPrinter(out)
	if opts.showAll {
		printer.ShowAll()
	}
	printer.PrintMatchResult(result)
	if analysisID != "" {
		_, _ = fmt.Fprintf(out, "Saved as %s\n", analysisID)
	}
	return nil
}

// progressPrinter writes one line per completed stage, e.g.
// "[extract] resume.txt: extracted resume text (1.2ms)".
func progressPrinter(w io.Writer) analysis.ProgressCallback {
	return func(e analysis.ProgressEvent) {
		subject := ""
		if e.Document != "" {
			subject = " " + e.Document + ":"
		}
		_, _ = fmt.Fprintf(w, "[%s]%s %s (%s)\n", e.Stage, subject, e.Message, e.Elapsed.Round(time.Microsecond))
	}
}

// readJobDescription returns the job description text. Files in PDF or HTML
// form go through the extractor first; URLs are downloaded.
func readJobDescription(ctx context.Context, a *app, opts analyzeOptions) (string, error) {
	switch {
	case opts.jobURL != "":
		posting, err := a.fetcher().JobPosting(ctx, opts.jobURL)
		if err != nil {
			return "", err
		}
		a.log.Debug("fetched job posting",
			zap.String("url", posting.URL),
			zap.String("platform", string(posting.Platform)),
			zap.Bool("rendered", posting.Rendered),
			zap.Int("chars", len(posting.Text)),
			zap.String("preview", logger.Truncate(posting.Text, 80)))
		return posting.Text, nil
	case opts.jobPath == "":
		return opts.jobText, nil
	}

	content, err := os.ReadFile(opts.jobPath)
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}

	format := extraction.FormatFromFilename(opts.jobPath)
	if format != extraction.FormatPDF && format != extraction.FormatHTML {
		return string(content), nil
	}

	res, err := extraction.New(a.log).Extract(extraction.Document{
		Name:    filepath.Base(opts.jobPath),
		Format:  format,
		Content: content,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
