package server

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/server/middleware"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// maxBatchFiles caps the number of resumes in one batch request
const maxBatchFiles = 20

// SampleJobDescription is served by /sample-data for trying the API.
const SampleJobDescription = `
Senior Full Stack Developer

Required Skills:
- Python, JavaScript, React, Node.js
- SQL, MongoDB, PostgreSQL
- AWS, Docker, Kubernetes
- REST APIs, Git, Agile

Nice to have:
- Machine Learning, TensorFlow
- Microservices Architecture
`

// handleAnalyze analyzes one uploaded resume against a job description.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	files := r.MultipartForm.File["resume"]
	if len(files) == 0 {
		s.errorResponse(w, r, &types.ValidationError{Field: "resume", Message: "No resume file provided"})
		return
	}
	jobDescription, ok := formValue(r.MultipartForm, "job_description")
	if !ok {
		s.errorResponse(w, r, &types.ValidationError{Field: "job_description", Message: "No job description provided"})
		return
	}

	header := files[0]
	req := types.AnalyzeRequest{Filename: header.Filename, JobDescription: jobDescription}
	if err := req.Validate(s.cfg.MinJobDescriptionLength); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	doc, err := readUpload(header)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), doc, jobDescription)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.AnalyzeResponse{
		Success:    true,
		Result:     result,
		AnalysisID: s.saveAnalysis(r.Context(), header.Filename, result),
	})
}

// handleAnalyzeBatch analyzes several uploaded resumes against one job
// description. Per-file failures are reported in the results.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	files := r.MultipartForm.File["resumes"]
	if len(files) == 0 {
		s.errorResponse(w, r, &types.ValidationError{Field: "resumes", Message: "No resume files provided"})
		return
	}
	if len(files) > maxBatchFiles {
		s.errorResponse(w, r, &ErrBadRequest{Message: "Too many files in one batch"})
		return
	}
	jobDescription, ok := formValue(r.MultipartForm, "job_description")
	if !ok {
		s.errorResponse(w, r, &types.ValidationError{Field: "job_description", Message: "No job description provided"})
		return
	}
	if err := types.ValidateJobDescription(jobDescription, s.cfg.MinJobDescriptionLength); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	items := make([]types.BatchItemResponse, len(files))
	docs := make([]extraction.Document, 0, len(files))
	positions := make([]int, 0, len(files))
	for i, header := range files {
		items[i].Filename = header.Filename
		if err := types.ValidateFilename(header.Filename); err != nil {
			items[i].Error = errorMessage(err)
			continue
		}
		doc, err := readUpload(header)
		if err != nil {
			items[i].Error = errorMessage(err)
			continue
		}
		docs = append(docs, doc)
		positions = append(positions, i)
	}

	results, err := s.analyzer.AnalyzeBatch(r.Context(), docs, jobDescription)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	for j, res := range results {
		item := &items[positions[j]]
		if res.Err != nil {
			item.Error = errorMessage(res.Err)
			continue
		}
		item.Success = true
		item.Result = res.Result
		item.AnalysisID = s.saveAnalysis(r.Context(), res.Name, res.Result)
	}

	resp := types.BatchResponse{Success: true, Total: len(items), Results: items}
	for _, item := range items {
		if item.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleSkills lists the taxonomy grouped by category and the level thresholds.
func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.SkillsResponse{
		Total:      s.taxonomy.Len(),
		Categories: s.taxonomy.Grouped(),
		Thresholds: matching.Thresholds(),
	})
}

// handleSampleData returns an example job description.
func (s *Server) handleSampleData(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, types.SampleDataResponse{SampleJobDescription: SampleJobDescription})
}

// parseUpload bounds the body size and parses the multipart form.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return &ErrPayloadTooLarge{Limit: s.cfg.MaxUploadBytes}
		}
		return &ErrBadRequest{Message: "Expected a multipart form upload"}
	}
	return nil
}

// saveAnalysis records result when a store is configured and returns its ID.
// Storage failures are logged and do not fail the request.
func (s *Server) saveAnalysis(ctx context.Context, filename string, result *matching.Result) string {
	if s.store == nil {
		return ""
	}
	rec, err := s.store.SaveAnalysis(ctx, filename, result)
	if err != nil {
		s.logger.Error("saving analysis",
			zap.String(logger.FieldRequestID, middleware.GetRequestID(ctx)),
			zap.String(logger.FieldFilename, filename),
			zap.Error(err),
		)
		return ""
	}
	return rec.ID.String()
}

// formValue returns the first value of key and whether it was sent non-empty.
// Whitespace-only values count as sent so the length check reports them.
func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// readUpload loads an uploaded file into a document.
func readUpload(header *multipart.FileHeader) (extraction.Document, error) {
	f, err := header.Open()
	if err != nil {
		return extraction.Document{}, &extraction.DocumentReadError{Message: "failed to open upload", Cause: err}
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return extraction.Document{}, &extraction.DocumentReadError{Message: "failed to read upload", Cause: err}
	}

	return extraction.Document{
		Name:    header.Filename,
		Format:  extraction.FormatFromFilename(header.Filename),
		Content: content,
	}, nil
}
