package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		platform Platform
		want     string
	}{
		{
			name: "main element",
			html: `<html><body><nav>Navigation</nav><main><h1>Main Content</h1>` +
				`<p>This is the important text.</p></main><footer>Footer</footer></body></html>`,
			platform: PlatformUnknown,
			want:     "Main Content\nThis is the important text.",
		},
		{
			name:     "fallback to body",
			html:     `<html><body><div>Some content here.</div></body></html>`,
			platform: PlatformUnknown,
			want:     "Some content here.",
		},
		{
			name: "greenhouse selectors",
			html: `<html><body><div class="job__description body"><p>Go</p><p>Redis</p></div>` +
				`<div class="application--wrapper">Apply now</div></body></html>`,
			platform: PlatformGreenhouse,
			want:     "Go\nRedis",
		},
		{
			name:     "line breaks separate words",
			html:     `<html><body><main>Python<br>Docker<span> and </span>AWS</main></body></html>`,
			platform: PlatformUnknown,
			want:     "Python\nDocker and AWS",
		},
		{
			name:     "scripts removed",
			html:     `<html><body><main><script>var kubernetes = true</script>Rust</main></body></html>`,
			platform: PlatformUnknown,
			want:     "Rust",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MainText(tt.html, tt.platform)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
