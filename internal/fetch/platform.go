package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformRules struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platforms = []platformRules{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{".ashby-job-posting-right-pane", "[class*='_descriptionText']", "main"},
		noise:    []string{"[class*='_applicationForm']"},
	},
}

// genericContent is tried in order for pages on unknown hosts.
var genericContent = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// commonNoise is removed on every platform: application forms, EEO and
// legal notices, share buttons and cookie banners.
var commonNoise = []string{
	"nav", "footer", "header", "script", "style", "noscript", "template",
	"form", "#application-form", ".application-form", ".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure", ".eeo-statement", ".eeo-section", "[data-testid='eeo']",
	".legal-disclosure", ".self-identification",
	".social-share", ".share-buttons", ".social-links",
	".cookie-banner", ".cookie-consent", ".gdpr-notice",
	".ad", ".advertisement", ".ads", ".sidebar", ".popup",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, p := range platforms {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p.platform
			}
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns the selectors tried, in order, to locate the
// description on platform's pages.
func ContentSelectors(platform Platform) []string {
	for _, p := range platforms {
		if p.platform == platform {
			return p.content
		}
	}
	return genericContent
}

// NoiseSelectors returns the elements removed before extraction.
func NoiseSelectors(platform Platform) []string {
	out := append([]string(nil), commonNoise...)
	for _, p := range platforms {
		if p.platform == platform {
			return append(out, p.noise...)
		}
	}
	return out
}
