package types

import (
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/matching"
	"github.com/jonathan/resume-analyzer/internal/taxonomy"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AnalyzeResponse flattens the match result next to the success flag.
type AnalyzeResponse struct {
	Success bool `json:"success"`
	*matching.Result
	AnalysisID string `json:"analysis_id,omitempty"`
}

// BatchItemResponse is one document's outcome in a batch.
type BatchItemResponse struct {
	Filename string `json:"filename"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	*matching.Result
	AnalysisID string `json:"analysis_id,omitempty"`
}

// BatchResponse summarizes a batch analysis.
type BatchResponse struct {
	Success   bool                `json:"success"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []BatchItemResponse `json:"results"`
}

// SkillsResponse lists the taxonomy and the level thresholds.
type SkillsResponse struct {
	Total      int                  `json:"total"`
	Categories []taxonomy.Category  `json:"categories"`
	Thresholds []matching.Threshold `json:"thresholds"`
}

// SampleDataResponse carries an example job description.
type SampleDataResponse struct {
	SampleJobDescription string `json:"sample_job_description"`
}

// HistoryResponse lists stored analyses, newest first.
type HistoryResponse struct {
	Count    int                 `json:"count"`
	Analyses []db.AnalysisRecord `json:"analyses"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
