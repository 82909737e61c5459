// Package db persists analysis results in PostgreSQL or SQLite.
package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/matching"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultListLimit applies when ListAnalyses is called with a non-positive limit.
const DefaultListLimit = 20

// MaxListLimit caps ListAnalyses.
const MaxListLimit = 500

// ErrNotFound is returned when an analysis ID does not exist.
var ErrNotFound = errors.New("analysis not found")

// Store is the analysis history. Implementations are safe for concurrent use.
type Store interface {
	SaveAnalysis(ctx context.Context, resumeFilename string, result *matching.Result) (*AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error)
	// ListAnalyses returns the most recent records first.
	ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// AnalysisRecord is a persisted MatchResult.
type AnalysisRecord struct {
	ID             uuid.UUID        `json:"id"`
	ResumeFilename string           `json:"resume_filename"`
	Result         *matching.Result `json:"result"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Stats summarizes the stored history.
type Stats struct {
	TotalAnalyses          int            `json:"total_analyses"`
	AverageMatchPercentage float64        `json:"average_match_percentage"`
	LevelCounts            map[string]int `json:"level_counts"`
	LastAnalysisAt         *time.Time     `json:"last_analysis_at,omitempty"`
}

// Open connects to the store selected by driver.
func Open(ctx context.Context, driver, url string) (Store, error) {
	switch driver {
	case DriverPostgres:
		return Connect(ctx, url)
	case DriverSQLite:
		return OpenSQLite(ctx, url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func newRecord(resumeFilename string, result *matching.Result) (*AnalysisRecord, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot save analysis without a result")
	}
	return &AnalysisRecord{
		ID:             uuid.New(),
		ResumeFilename: resumeFilename,
		Result:         result,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func roundAverage(avg float64) float64 {
	return math.Round(avg*100) / 100
}
