package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/normalize"
	"github.com/jonathan/resume-analyzer/internal/skills"
	"github.com/jonathan/resume-analyzer/internal/taxonomy"
)

// app carries the state shared by every command: the merged configuration
// and the components built from it.
type app struct {
	v          *viper.Viper
	configPath string

	cfg      *config.Config
	log      *zap.Logger
	taxonomy *taxonomy.Taxonomy
	skills   *skills.Extractor
	analyzer *analysis.Analyzer
	analysis analysis.Options
}

func newApp() *app {
	return &app{v: config.NewViper()}
}

// init loads configuration and builds the analysis pipeline. It runs before
// every command, after flags are parsed.
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logger.New(logger.Options{JSON: cfg.Log.JSON, Debug: cfg.Log.Debug})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if cfg.Taxonomy.Path != "" {
		a.taxonomy, err = taxonomy.LoadFile(cfg.Taxonomy.Path)
		if err != nil {
			return fmt.Errorf("failed to load taxonomy: %w", err)
		}
		a.log.Debug("loaded taxonomy",
			zap.String("path", cfg.Taxonomy.Path),
			zap.Int("skills", a.taxonomy.Len()))
	} else {
		a.taxonomy = taxonomy.Default()
	}

	normalizer := normalize.New(normalize.Options{ExtendedSymbols: cfg.Analysis.ExtendedSymbols})
	a.skills, err = skills.NewExtractor(a.taxonomy, normalizer, a.log)
	if err != nil {
		return fmt.Errorf("failed to build skill extractor: %w", err)
	}

	a.analysis = analysis.Options{
		JobFormat:        extraction.Format(cfg.Analysis.JobFormat),
		BatchConcurrency: cfg.Analysis.BatchConcurrency,
	}
	a.analyzer = analysis.New(extraction.New(a.log), a.skills, a.log, a.analysis)
	return nil
}

// analyzerWithProgress builds an Analyzer that reports each completed stage.
func (a *app) analyzerWithProgress(onProgress analysis.ProgressCallback) *analysis.Analyzer {
	opts := a.analysis
	opts.OnProgress = onProgress
	return analysis.New(extraction.New(a.log), a.skills, a.log, opts)
}

// openStore connects to the configured history store.
func (a *app) openStore(ctx context.Context) (db.Store, error) {
	if !a.cfg.Database.Enabled() {
		return nil, fmt.Errorf("no history store configured (set database.driver and database.url)")
	}
	store, err := db.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return store, nil
}

// fetcher builds a job posting fetcher from the fetch settings.
func (a *app) fetcher() *fetch.Fetcher {
	fc := a.cfg.Fetch
	return fetch.New(fetch.Options{
		Timeout:         fc.Timeout,
		UserAgent:       fc.UserAgent,
		MaxBodyBytes:    fc.MaxBodyBytes,
		BrowserFallback: fc.BrowserFallback,
	}, a.log)
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}
