package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-analyzer/internal/db/migrations"
	"github.com/jonathan/resume-analyzer/internal/matching"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database and applies the schema
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// migrate applies every embedded migration. Each file is idempotent.
func (db *DB) migrate(ctx context.Context) error {
	files, err := fs.Glob(migrations.Postgres, "postgres/*.up.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(migrations.Postgres, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}
	return nil
}

// SaveAnalysis stores a match result and returns the new record
func (db *DB) SaveAnalysis(ctx context.Context, resumeFilename string, result *matching.Result) (*AnalysisRecord, error) {
	rec, err := newRecord(resumeFilename, result)
	if err != nil {
		return nil, err
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO analyses (id, resume_filename, match_percentage, match_level, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ResumeFilename, result.MatchPercentage, string(result.MatchLevel), jsonBytes, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return rec, nil
}

// GetAnalysis retrieves one analysis by ID
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, resume_filename, result, created_at FROM analyses WHERE id = $1`,
		id,
	)
	rec, err := scanPostgresRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return rec, nil
}

// ListAnalyses returns the most recent analyses
func (db *DB) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, resume_filename, result, created_at FROM analyses
		 ORDER BY created_at DESC, id
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := make([]AnalysisRecord, 0)
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, nil
}

// Stats aggregates the stored analyses
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{LevelCounts: make(map[string]int)}

	var avg float64
	var last *time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(match_percentage), 0), MAX(created_at) FROM analyses`,
	).Scan(&stats.TotalAnalyses, &avg, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	stats.AverageMatchPercentage = roundAverage(avg)
	if last != nil {
		utc := last.UTC()
		stats.LastAnalysisAt = &utc
	}

	rows, err := db.pool.Query(ctx, `SELECT match_level, COUNT(*) FROM analyses GROUP BY match_level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count levels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan level count: %w", err)
		}
		stats.LevelCounts[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count levels: %w", err)
	}
	return stats, nil
}

func scanPostgresRecord(row pgx.Row) (*AnalysisRecord, error) {
	var (
		rec     AnalysisRecord
		content []byte
	)
	if err := row.Scan(&rec.ID, &rec.ResumeFilename, &content, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	var result matching.Result
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	rec.Result = &result
	return &rec, nil
}
