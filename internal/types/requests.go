// Package types provides the request and response shapes of the analyzer HTTP API.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllowedResumeExtensions lists the upload extensions accepted for resumes.
var AllowedResumeExtensions = []string{".pdf", ".txt"}

// ValidationError describes the first invalid field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AnalyzeRequest is the validated part of an analyze upload.
type AnalyzeRequest struct {
	Filename       string `validate:"required,resumeext"`
	JobDescription string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resumeext", func(fl validator.FieldLevel) bool {
		return HasAllowedExtension(fl.Field().String())
	})
	return v
}

// HasAllowedExtension reports whether filename ends in an accepted extension.
func HasAllowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedResumeExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateFilename checks a resume upload name.
func ValidateFilename(filename string) error {
	return translate(validate.Var(filename, "required,resumeext"), 0)
}

// Validate checks the filename and that the trimmed job description has at
// least minJobDescriptionLength characters.
func (r *AnalyzeRequest) Validate(minJobDescriptionLength int) error {
	if err := translate(validate.Struct(r), 0); err != nil {
		return err
	}
	return ValidateJobDescription(r.JobDescription, minJobDescriptionLength)
}

// ValidateJobDescription checks the trimmed length of a job description.
func ValidateJobDescription(jobDescription string, minLength int) error {
	if minLength <= 0 {
		return nil
	}
	err := validate.Var(strings.TrimSpace(jobDescription), fmt.Sprintf("min=%d", minLength))
	return translate(err, minLength)
}

func translate(err error, minLength int) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: "resume", Message: "No resume file selected"}
	case "resumeext":
		return &ValidationError{Field: "resume", Message: "Only PDF and TXT files are allowed"}
	case "min":
		return &ValidationError{
			Field:   "job_description",
			Message: fmt.Sprintf("Job description must be at least %d characters", minLength),
		}
	}
	return &ValidationError{Field: fe.Field(), Message: fe.Error()}
}
