package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/skills"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "history", "analyses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func sampleResult(resume, job []string) *matching.Result {
	return matching.Match(skills.NewSet(resume...), skills.NewSet(job...))
}

// testStoreContract exercises behaviour every Store implementation shares.
func testStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		result := sampleResult([]string{"python", "react"}, []string{"python", "react", "docker"})

		saved, err := store.SaveAnalysis(ctx, "cv.pdf", result)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
		assert.Equal(t, "cv.pdf", saved.ResumeFilename)

		got, err := store.GetAnalysis(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, got.ID)
		assert.Equal(t, "cv.pdf", got.ResumeFilename)
		assert.Equal(t, result, got.Result)
		assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("get unknown id", func(t *testing.T) {
		got, err := store.GetAnalysis(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("save nil result", func(t *testing.T) {
		_, err := store.SaveAnalysis(ctx, "cv.pdf", nil)
		assert.Error(t, err)
	})

	t.Run("list newest first", func(t *testing.T) {
		var ids []uuid.UUID
		for _, name := range []string{"first.pdf", "second.pdf", "third.pdf"} {
			rec, err := store.SaveAnalysis(ctx, name, sampleResult([]string{"go"}, []string{"go"}))
			require.NoError(t, err)
			ids = append(ids, rec.ID)
			time.Sleep(2 * time.Millisecond)
		}

		records, err := store.ListAnalyses(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, ids[2], records[0].ID)
		assert.Equal(t, ids[1], records[1].ID)
		assert.Equal(t, "third.pdf", records[0].ResumeFilename)
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	testStoreContract(t, setupSQLiteStore(t))
}

func TestSQLiteStore_Stats(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	empty, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalAnalyses)
	assert.Equal(t, 0.0, empty.AverageMatchPercentage)
	assert.Nil(t, empty.LastAnalysisAt)
	assert.Empty(t, empty.LevelCounts)

	_, err = store.SaveAnalysis(ctx, "a.pdf", sampleResult([]string{"sql"}, []string{"sql"}))
	require.NoError(t, err)
	_, err = store.SaveAnalysis(ctx, "b.pdf", sampleResult([]string{"sql"}, []string{"sql", "go", "aws"}))
	require.NoError(t, err)
	last, err := store.SaveAnalysis(ctx, "c.pdf", sampleResult([]string{"cobol"}, []string{"python"}))
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAnalyses)
	assert.Equal(t, 44.44, stats.AverageMatchPercentage)
	assert.Equal(t, map[string]int{
		string(matching.LevelExcellent): 1,
		string(matching.LevelPoor):      1,
		string(matching.LevelVeryPoor):  1,
	}, stats.LevelCounts)
	require.NotNil(t, stats.LastAnalysisAt)
	assert.WithinDuration(t, last.CreatedAt, *stats.LastAnalysisAt, time.Millisecond)
}

func TestSQLiteStore_ListLimitClamped(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < DefaultListLimit+5; i++ {
		_, err := store.SaveAnalysis(ctx, "cv.txt", sampleResult([]string{"go"}, []string{"go"}))
		require.NoError(t, err)
	}

	records, err := store.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, DefaultListLimit)

	records, err = store.ListAnalyses(ctx, MaxListLimit+100)
	require.NoError(t, err)
	assert.Len(t, records, DefaultListLimit+5)
}

func TestSQLiteStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyses.db")
	ctx := context.Background()

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	saved, err := store.SaveAnalysis(ctx, "cv.pdf", sampleResult([]string{"go"}, []string{"go"}))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetAnalysis(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", got.ResumeFilename)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	testStoreContract(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, "mysql", "whatever")
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)

	_, err = OpenSQLite(ctx, "")
	assert.Error(t, err)
}
