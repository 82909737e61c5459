package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/normalize"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/skills"
	"github.com/jonathan/resume-analyzer/internal/taxonomy"
)

const testJob = "We need Python, JavaScript, React, Docker and Kubernetes experience"

type upload struct {
	field    string
	filename string
	content  string
}

func newTestServer(t *testing.T, store db.Store, mutate func(*Config)) *Server {
	t.Helper()

	tax := taxonomy.Default()
	ext, err := skills.NewExtractor(tax, normalize.New(normalize.Options{}), nil)
	require.NoError(t, err)

	cfg := Config{
		Port:                    0,
		MaxUploadBytes:          1 << 20,
		MinJobDescriptionLength: 10,
		RateLimit:               ratelimit.NewConfig(false, 0, 0, nil, nil),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := New(cfg, Deps{
		Analyzer: analysis.New(extraction.New(nil), ext, nil, analysis.Options{}),
		Taxonomy: tax,
		Store:    store,
	})
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func newSQLiteStore(t *testing.T) db.Store {
	t.Helper()
	store, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func multipartRequest(t *testing.T, path string, files []upload, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHandleAnalyze_Success(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := multipartRequest(t, "/analyze",
		[]upload{{field: "resume", filename: "cv.txt", content: "Python, React and Docker in production"}},
		map[string]string{"job_description": testJob})
	w, body := serve(s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 60.0, body["match_percentage"])
	assert.Equal(t, "Good Match", body["match_level"])
	assert.Equal(t, []any{"docker", "python", "react"}, body["matched_skills"])
	assert.Equal(t, []any{"javascript", "kubernetes"}, body["missing_skills"])
	assert.EqualValues(t, 3, body["resume_skills_count"])
	assert.EqualValues(t, 5, body["required_skills_count"])
	assert.EqualValues(t, 3, body["matched_count"])
	assert.EqualValues(t, 2, body["missing_count"])
	assert.NotContains(t, body, "analysis_id")
}

func TestHandleAnalyze_Validation(t *testing.T) {
	resume := upload{field: "resume", filename: "cv.txt", content: "python"}

	tests := []struct {
		name    string
		files   []upload
		fields  map[string]string
		status  int
		message string
	}{
		{
			name:    "missing resume",
			fields:  map[string]string{"job_description": testJob},
			status:  http.StatusBadRequest,
			message: "No resume file provided",
		},
		{
			name:    "missing job description",
			files:   []upload{resume},
			status:  http.StatusBadRequest,
			message: "No job description provided",
		},
		{
			name:    "empty job description",
			files:   []upload{resume},
			fields:  map[string]string{"job_description": ""},
			status:  http.StatusBadRequest,
			message: "No job description provided",
		},
		{
			name:    "unsupported extension",
			files:   []upload{{field: "resume", filename: "cv.docx", content: "python"}},
			fields:  map[string]string{"job_description": testJob},
			status:  http.StatusBadRequest,
			message: "Only PDF and TXT files are allowed",
		},
		{
			name:    "short job description",
			files:   []upload{resume},
			fields:  map[string]string{"job_description": "   python   "},
			status:  http.StatusBadRequest,
			message: "Job description must be at least 10 characters",
		},
		{
			name:    "no job skills",
			files:   []upload{resume},
			fields:  map[string]string{"job_description": "A friendly and motivated team player"},
			status:  http.StatusBadRequest,
			message: "No recognized skills found in job description",
		},
		{
			name:    "no resume skills",
			files:   []upload{{field: "resume", filename: "cv.txt", content: "Gardening and baking"}},
			fields:  map[string]string{"job_description": testJob},
			status:  http.StatusBadRequest,
			message: "No recognized skills found in resume",
		},
		{
			name:    "corrupt pdf",
			files:   []upload{{field: "resume", filename: "cv.pdf", content: "definitely not a pdf"}},
			fields:  map[string]string{"job_description": testJob},
			status:  http.StatusBadRequest,
			message: "Failed to parse resume: ",
		},
		{
			name:    "blank text resume",
			files:   []upload{{field: "resume", filename: "cv.txt", content: "   \n  "}},
			fields:  map[string]string{"job_description": testJob},
			status:  http.StatusBadRequest,
			message: "Failed to parse resume: no extractable text",
		},
	}

	s := newTestServer(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(s, multipartRequest(t, "/analyze", tt.files, tt.fields))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Contains(t, body["error"], tt.message)
		})
	}
}

func TestHandleAnalyze_NotMultipart(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"resume": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	w, body := serve(s, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Expected a multipart form upload", body["error"])
}

func TestHandleAnalyze_TooLarge(t *testing.T) {
	s := newTestServer(t, nil, func(c *Config) { c.MaxUploadBytes = 1 << 10 })

	req := multipartRequest(t, "/analyze",
		[]upload{{field: "resume", filename: "cv.txt", content: strings.Repeat("python ", 1000)}},
		map[string]string{"job_description": testJob})
	w, body := serve(s, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "File size exceeds maximum limit")
}

func TestHandleAnalyze_SavesHistory(t *testing.T) {
	s := newTestServer(t, newSQLiteStore(t), nil)

	req := multipartRequest(t, "/analyze",
		[]upload{{field: "resume", filename: "cv.txt", content: "python docker"}},
		map[string]string{"job_description": testJob})
	w, body := serve(s, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	id, ok := body["analysis_id"].(string)
	require.True(t, ok, "analysis_id missing")

	w, record := serve(s, httptest.NewRequest(http.MethodGet, "/history/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, record["id"])
	assert.Equal(t, "cv.txt", record["resume_filename"])
	result := record["result"].(map[string]any)
	assert.Equal(t, 40.0, result["match_percentage"])

	w, list := serve(s, httptest.NewRequest(http.MethodGet, "/history?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, list["count"])

	w, stats := serve(s, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, stats["total_analyses"])
	assert.Equal(t, 40.0, stats["average_match_percentage"])
}

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) SaveAnalysis(context.Context, string, *matching.Result) (*db.AnalysisRecord, error) {
	return nil, errors.New("disk full")
}
func (failingStore) GetAnalysis(context.Context, uuid.UUID) (*db.AnalysisRecord, error) {
	return nil, errors.New("connection reset")
}
func (failingStore) ListAnalyses(context.Context, int) ([]db.AnalysisRecord, error) {
	return nil, errors.New("connection reset")
}
func (failingStore) Stats(context.Context) (*db.Stats, error) {
	return nil, errors.New("connection reset")
}
func (failingStore) Close() error { return nil }

func TestHandleAnalyze_StoreFailureDoesNotFailRequest(t *testing.T) {
	s := newTestServer(t, failingStore{}, nil)

	req := multipartRequest(t, "/analyze",
		[]upload{{field: "resume", filename: "cv.txt", content: "python"}},
		map[string]string{"job_description": testJob})
	w, body := serve(s, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "analysis_id")
}

func TestHistoryEndpoints_Errors(t *testing.T) {
	tests := []struct {
		name    string
		store   db.Store
		path    string
		status  int
		message string
	}{
		{name: "list without store", path: "/history", status: http.StatusServiceUnavailable, message: "history store is not configured"},
		{name: "get without store", path: "/history/" + uuid.NewString(), status: http.StatusServiceUnavailable, message: "history store is not configured"},
		{name: "stats without store", path: "/stats", status: http.StatusServiceUnavailable, message: "history store is not configured"},
		{name: "malformed id", store: newSQLiteStore(t), path: "/history/not-a-uuid", status: http.StatusBadRequest, message: "invalid analysis id"},
		{name: "unknown id", store: newSQLiteStore(t), path: "/history/" + uuid.NewString(), status: http.StatusNotFound, message: "analysis not found"},
		{name: "bad limit", store: newSQLiteStore(t), path: "/history?limit=abc", status: http.StatusBadRequest, message: "limit must be a positive integer"},
		{name: "store failure hidden", store: failingStore{}, path: "/stats", status: http.StatusInternalServerError, message: "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.store, nil)
			w, body := serve(s, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestHandleAnalyzeBatch(t *testing.T) {
	s := newTestServer(t, newSQLiteStore(t), nil)

	req := multipartRequest(t, "/analyze/batch", []upload{
		{field: "resumes", filename: "a.txt", content: "Python React Docker"},
		{field: "resumes", filename: "b.docx", content: "python"},
		{field: "resumes", filename: "c.txt", content: "Gardening"},
		{field: "resumes", filename: "d.txt", content: "kubernetes"},
	}, map[string]string{"job_description": testJob})
	w, body := serve(s, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 4, body["total"])
	assert.EqualValues(t, 2, body["succeeded"])
	assert.EqualValues(t, 2, body["failed"])

	results := body["results"].([]any)
	require.Len(t, results, 4)

	first := results[0].(map[string]any)
	assert.Equal(t, "a.txt", first["filename"])
	assert.Equal(t, true, first["success"])
	assert.Equal(t, 60.0, first["match_percentage"])
	assert.NotEmpty(t, first["analysis_id"])

	second := results[1].(map[string]any)
	assert.Equal(t, "b.docx", second["filename"])
	assert.Equal(t, "Only PDF and TXT files are allowed", second["error"])
	assert.NotContains(t, second, "match_percentage")

	third := results[2].(map[string]any)
	assert.Equal(t, "No recognized skills found in resume", third["error"])

	fourth := results[3].(map[string]any)
	assert.Equal(t, 20.0, fourth["match_percentage"])
}

func TestHandleAnalyzeBatch_Errors(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w, body := serve(s, multipartRequest(t, "/analyze/batch", nil, map[string]string{"job_description": testJob}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No resume files provided", body["error"])

	files := make([]upload, maxBatchFiles+1)
	for i := range files {
		files[i] = upload{field: "resumes", filename: "cv.txt", content: "python"}
	}
	w, body = serve(s, multipartRequest(t, "/analyze/batch", files, map[string]string{"job_description": testJob}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Too many files in one batch", body["error"])

	w, body = serve(s, multipartRequest(t, "/analyze/batch",
		[]upload{{field: "resumes", filename: "cv.txt", content: "python"}},
		map[string]string{"job_description": "Friendly team, great coffee"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No recognized skills found in job description", body["error"])
}

func TestHandleSkills(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w, body := serve(s, httptest.NewRequest(http.MethodGet, "/skills", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, taxonomy.Default().Len(), body["total"])
	assert.Len(t, body["categories"], len(taxonomy.Default().Categories()))

	thresholds := body["thresholds"].([]any)
	require.Len(t, thresholds, 5)
	assert.Equal(t, "Excellent Match", thresholds[0].(map[string]any)["level"])
}

func TestHandleSampleData(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w, body := serve(s, httptest.NewRequest(http.MethodGet, "/sample-data", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["sample_job_description"], "Senior Full Stack Developer")
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w, body := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w, _ := serve(s, httptest.NewRequest(http.MethodOptions, "/analyze", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil, func(c *Config) {
		c.RateLimit = ratelimit.NewConfig(true, 1, 1, nil, nil)
	})

	newReq := func() *http.Request {
		return multipartRequest(t, "/analyze",
			[]upload{{field: "resume", filename: "cv.txt", content: "python"}},
			map[string]string{"job_description": testJob})
	}

	w, _ := serve(s, newReq())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w, body := serve(s, newReq())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health checks are never limited
	w, _ = serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{}, Deps{Taxonomy: taxonomy.Default()})
	assert.Error(t, err)

	_, err = New(Config{}, Deps{Analyzer: &analysis.Analyzer{}})
	assert.Error(t, err)
}
