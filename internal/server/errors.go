package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/extraction"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// ErrPayloadTooLarge indicates the upload exceeded the configured limit
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("File size exceeds maximum limit (%dMB)", e.Limit>>20)
}

// ErrStoreUnavailable indicates a history endpoint was called without a store
type ErrStoreUnavailable struct{}

func (e *ErrStoreUnavailable) Error() string {
	return "history store is not configured"
}

// ErrBadRequest indicates a malformed request outside field validation
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *types.ValidationError
		badRequest    *ErrBadRequest
		readErr       *extraction.DocumentReadError
		emptyErr      *extraction.EmptyTextError
		noSkillsErr   *analysis.NoSkillsFoundError
		tooLarge      *ErrPayloadTooLarge
		unavailable   *ErrStoreUnavailable
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &badRequest),
		errors.As(err, &readErr), errors.As(err, &emptyErr), errors.As(err, &noSkillsErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for err. Internal errors are
// not exposed.
func errorMessage(err error) string {
	var (
		readErr     *extraction.DocumentReadError
		emptyErr    *extraction.EmptyTextError
		noSkillsErr *analysis.NoSkillsFoundError
	)
	switch {
	case errors.As(err, &readErr), errors.As(err, &emptyErr):
		return "Failed to parse resume: " + err.Error()
	case errors.As(err, &noSkillsErr):
		return "No recognized skills found in " + string(noSkillsErr.Source)
	}

	switch HTTPStatus(err) {
	case http.StatusInternalServerError:
		return "An unexpected error occurred"
	case http.StatusGatewayTimeout:
		return "Analysis timed out"
	}
	return err.Error()
}
