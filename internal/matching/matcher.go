// Package matching compares a resume skill set with a job skill set.
package matching

import (
	"math"

	"github.com/jonathan/resume-analyzer/internal/skills"
)

// Result is the read-only outcome of comparing two skill sets.
type Result struct {
	MatchPercentage     float64  `json:"match_percentage"`
	MatchLevel          Level    `json:"match_level"`
	MatchedSkills       []string `json:"matched_skills"`
	MissingSkills       []string `json:"missing_skills"`
	ResumeSkillsCount   int      `json:"resume_skills_count"`
	RequiredSkillsCount int      `json:"required_skills_count"`
	MatchedCount        int      `json:"matched_count"`
	MissingCount        int      `json:"missing_count"`
}

// Match computes matched = resume ∩ job and missing = job − resume (both
// sorted), the percentage of job skills covered rounded to two decimals, and
// the resulting level. An empty job set yields 0. Match has no side effects.
func Match(resume, job skills.Set) *Result {
	matched := make([]string, 0)
	missing := make([]string, 0)
	for _, skill := range job.Sorted() {
		if resume.Contains(skill) {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	percentage := Percentage(len(matched), job.Len())

	return &Result{
		MatchPercentage:     percentage,
		MatchLevel:          LevelFor(percentage),
		MatchedSkills:       matched,
		MissingSkills:       missing,
		ResumeSkillsCount:   resume.Len(),
		RequiredSkillsCount: job.Len(),
		MatchedCount:        len(matched),
		MissingCount:        len(missing),
	}
}

// Percentage returns 100 * matched / required rounded to two decimals with
// ties to even, or 0 when required is zero.
func Percentage(matched, required int) float64 {
	if required <= 0 {
		return 0
	}
	return math.RoundToEven(float64(matched)*10000/float64(required)) / 100
}
