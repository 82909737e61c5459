// Package analysis orchestrates resume analysis: text extraction, skill
// extraction on both inputs, and matching.
package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/skills"
)

// DefaultBatchConcurrency bounds AnalyzeBatch when Options leaves it unset.
const DefaultBatchConcurrency = 4

// Stage identifies a step of one analysis.
type Stage string

const (
	StageExtract      Stage = "extract"
	StageResumeSkills Stage = "resume_skills"
	StageJobSkills    Stage = "job_skills"
	StageMatch        Stage = "match"
)

// ProgressEvent reports a completed stage.
type ProgressEvent struct {
	Stage    Stage         `json:"stage"`
	Document string        `json:"document,omitempty"`
	Message  string        `json:"message"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ProgressCallback is called after each stage. With AnalyzeBatch it is called
// from several goroutines at once.
type ProgressCallback func(event ProgressEvent)

// Options configure an Analyzer.
type Options struct {
	// JobFormat is how job description text is encoded. FormatAuto sniffs
	// for HTML and otherwise treats the text as plain.
	JobFormat extraction.Format
	// BatchConcurrency caps concurrent documents in AnalyzeBatch.
	BatchConcurrency int
	OnProgress       ProgressCallback
}

// Analyzer runs the analyze operation. It holds only read-only collaborators
// and is safe for concurrent use.
type Analyzer struct {
	extractor *extraction.Extractor
	skills    *skills.Extractor
	logger    *zap.Logger
	opts      Options
}

// New creates an Analyzer.
func New(extractor *extraction.Extractor, skillExtractor *skills.Extractor, log *zap.Logger, opts Options) *Analyzer {
	if extractor == nil {
		extractor = extraction.New(log)
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = DefaultBatchConcurrency
	}
	return &Analyzer{
		extractor: extractor,
		skills:    skillExtractor,
		logger:    logger.OrNop(log),
		opts:      opts,
	}
}

// Analyze extracts skills from resume and jobDescription and matches them.
// Extraction failures are returned as *extraction.DocumentReadError or
// *extraction.EmptyTextError. An empty job skill set is reported before an
// empty resume skill set, both as *NoSkillsFoundError.
func (a *Analyzer) Analyze(ctx context.Context, resume extraction.Document, jobDescription string) (*matching.Result, error) {
	resumeSkills, err := a.ResumeSkills(ctx, resume)
	if err != nil {
		return nil, err
	}

	jobSkills, err := a.JobSkills(ctx, jobDescription)
	if err != nil {
		return nil, err
	}

	return a.match(ctx, resume.Name, resumeSkills, jobSkills)
}

// ResumeSkills extracts the skills of one resume without matching.
func (a *Analyzer) ResumeSkills(ctx context.Context, resume extraction.Document) (skills.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	extracted, err := a.extractor.Extract(resume)
	if err != nil {
		a.logger.Debug("resume extraction failed",
			zap.String(logger.FieldFilename, resume.Name),
			zap.Error(err),
		)
		return nil, err
	}
	a.emit(StageExtract, resume.Name, "extracted resume text", start,
		zap.String(logger.FieldFormat, string(extracted.Format)),
		zap.Int("pages", extracted.Pages),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	found := a.skills.ExtractText(extracted.Text)
	a.emit(StageResumeSkills, resume.Name, "extracted resume skills", start,
		zap.Int("skills", found.Len()),
	)
	return found, nil
}

// JobSkills extracts the skills required by a job description.
func (a *Analyzer) JobSkills(ctx context.Context, jobDescription string) (skills.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := a.jobText(jobDescription)
	if err != nil {
		return nil, err
	}
	found := a.skills.ExtractText(text)
	a.emit(StageJobSkills, "", "extracted job skills", start,
		zap.Int("skills", found.Len()),
	)
	return found, nil
}

func (a *Analyzer) match(ctx context.Context, name string, resumeSkills, jobSkills skills.Set) (*matching.Result, error) {
	if jobSkills.Len() == 0 {
		return nil, &NoSkillsFoundError{Source: SourceJobDescription}
	}
	if resumeSkills.Len() == 0 {
		return nil, &NoSkillsFoundError{Source: SourceResume}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := matching.Match(resumeSkills, jobSkills)
	a.emit(StageMatch, name, string(result.MatchLevel), start,
		zap.Float64("match_percentage", result.MatchPercentage),
		zap.Int("matched", result.MatchedCount),
		zap.Int("missing", result.MissingCount),
	)
	return result, nil
}

func (a *Analyzer) jobText(jobDescription string) (string, error) {
	switch a.opts.JobFormat {
	case extraction.FormatHTML:
		return extraction.HTMLToText(jobDescription)
	case extraction.FormatAuto:
		if format, err := extraction.DetectFormat([]byte(jobDescription)); err == nil && format == extraction.FormatHTML {
			return extraction.HTMLToText(jobDescription)
		}
	}
	return jobDescription, nil
}

func (a *Analyzer) emit(stage Stage, document, message string, start time.Time, fields ...zap.Field) {
	elapsed := time.Since(start)
	fields = append(fields,
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", elapsed),
	)
	if document != "" {
		fields = append(fields, zap.String(logger.FieldFilename, document))
	}
	a.logger.Debug(message, fields...)

	if a.opts.OnProgress != nil {
		a.opts.OnProgress(ProgressEvent{
			Stage:    stage,
			Document: document,
			Message:  message,
			Elapsed:  elapsed,
		})
	}
}

// BatchResult is the outcome for one document of a batch. Exactly one of
// Result and Err is set.
type BatchResult struct {
	Name   string
	Result *matching.Result
	Err    error
}

// AnalyzeBatch matches every resume against one job description. The job
// skill set is computed once; if it is empty the whole batch fails with
// *NoSkillsFoundError. Per-document failures are recorded in the matching
// BatchResult and never stop the batch. Results keep the input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, resumes []extraction.Document, jobDescription string) ([]BatchResult, error) {
	jobSkills, err := a.JobSkills(ctx, jobDescription)
	if err != nil {
		return nil, err
	}
	if jobSkills.Len() == 0 {
		return nil, &NoSkillsFoundError{Source: SourceJobDescription}
	}

	results := make([]BatchResult, len(resumes))

	var g errgroup.Group
	g.SetLimit(a.opts.BatchConcurrency)
	for i, doc := range resumes {
		g.Go(func() error {
			results[i].Name = doc.Name
			resumeSkills, err := a.ResumeSkills(ctx, doc)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result, results[i].Err = a.match(ctx, doc.Name, resumeSkills, jobSkills)
			return nil
		})
	}
	_ = g.Wait()

	a.logger.Info("batch analysis complete",
		zap.Int("documents", len(resumes)),
		zap.Int("job_skills", jobSkills.Len()),
	)

	return results, ctx.Err()
}
