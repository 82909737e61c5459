package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://greenhouse.io/jobs/456", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://company.wd5.myworkdayjobs.com/en-US/careers/job/123", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme/abc", PlatformAshby},
		{"https://notgreenhouse.io.example.com/jobs", PlatformUnknown},
		{"https://example.com/careers", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestSelectors(t *testing.T) {
	assert.Equal(t, ".job__description.body", ContentSelectors(PlatformGreenhouse)[0])
	assert.Contains(t, ContentSelectors(PlatformUnknown), ".job-description")

	noise := NoiseSelectors(PlatformLever)
	assert.Contains(t, noise, "form")
	assert.Contains(t, noise, ".posting-apply")
	assert.NotContains(t, NoiseSelectors(PlatformUnknown), ".posting-apply")

	// the shared list must not be modified by appends
	assert.NotContains(t, NoiseSelectors(PlatformGreenhouse), ".posting-apply")
}
