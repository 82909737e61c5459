package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jonathan/resume-analyzer/internal/db/migrations"
	"github.com/jonathan/resume-analyzer/internal/matching"
)

// SQLiteStore keeps the history in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and runs pending
// migrations. path may be ":memory:".
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		if !strings.Contains(path, "?") {
			dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate applies migrations newer than the recorded schema version.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	files, err := fs.Glob(migrations.SQLite, "sqlite/*.up.sql")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		var version int
		if _, err := fmt.Sscanf(filepath.Base(name), "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(migrations.SQLite, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Unix(),
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// SaveAnalysis stores a match result and returns the new record.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, resumeFilename string, result *matching.Result) (*AnalysisRecord, error) {
	rec, err := newRecord(resumeFilename, result)
	if err != nil {
		return nil, err
	}

	content, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshalling result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, resume_filename, match_percentage, match_level, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID.String(), rec.ResumeFilename, result.MatchPercentage, string(result.MatchLevel),
		string(content), rec.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("saving analysis: %w", err)
	}
	return rec, nil
}

// GetAnalysis retrieves one analysis by ID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, resume_filename, result, created_at FROM analyses WHERE id = ?",
		id.String(),
	)
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting analysis %s: %w", id, err)
	}
	return rec, nil
}

// ListAnalyses returns the most recent analyses first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resume_filename, result, created_at FROM analyses
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	records := make([]AnalysisRecord, 0)
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return records, nil
}

// Stats aggregates the stored analyses.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{LevelCounts: make(map[string]int)}

	var (
		avg  float64
		last sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(AVG(match_percentage), 0), MAX(created_at) FROM analyses",
	).Scan(&stats.TotalAnalyses, &avg, &last)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	stats.AverageMatchPercentage = roundAverage(avg)
	if last.Valid {
		t := time.Unix(0, last.Int64).UTC()
		stats.LastAnalysisAt = &t
	}

	rows, err := s.db.QueryContext(ctx, "SELECT match_level, COUNT(*) FROM analyses GROUP BY match_level")
	if err != nil {
		return nil, fmt.Errorf("counting levels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scanning level count: %w", err)
		}
		stats.LevelCounts[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("counting levels: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (*AnalysisRecord, error) {
	var (
		id        string
		content   string
		createdAt int64
		rec       AnalysisRecord
	)
	if err := row.Scan(&id, &rec.ResumeFilename, &content, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing id %q: %w", id, err)
	}
	rec.ID = parsed
	rec.CreatedAt = time.Unix(0, createdAt).UTC()

	var result matching.Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("unmarshalling result: %w", err)
	}
	rec.Result = &result
	return &rec, nil
}
