package analysis

import "fmt"

// Source names the input that produced no skills.
type Source string

const (
	// SourceResume is the candidate's resume.
	SourceResume Source = "resume"
	// SourceJobDescription is the job description text.
	SourceJobDescription Source = "job description"
)

// NoSkillsFoundError indicates that one side of an analysis contained no
// taxonomy skills, so a match percentage would be meaningless.
type NoSkillsFoundError struct {
	Source Source
}

func (e *NoSkillsFoundError) Error() string {
	return fmt.Sprintf("no recognized skills found in %s", e.Source)
}
