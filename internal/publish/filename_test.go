package publish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/feedgist/internal/publish"
)

func TestSafeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		link  string
		want  string
	}{
		{"plain", "Linux 6.9 released", "", "Linux_6.9_released.md"},
		{"forbidden characters", `What's new: "Noble" <LTS>/arm64 | x86? *yes*`, "", "What's_new_Noble_LTSarm64_x86_yes.md"},
		{"whitespace runs", "Tabs\tand\n\nnewlines   here", "", "Tabs_and_newlines_here.md"},
		{"backslash", `C:\path\to`, "", "Cpathto.md"},
		{"empty title uses host", "", "https://www.kernel.org/feeds/kdist.xml", "www.kernel.org.md"},
		{"only forbidden uses host", `<>?*`, "https://planet.ubuntu.com/x", "planet.ubuntu.com.md"},
		{"nothing usable", "", "not a url", "article.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, publish.SafeFilename(tt.title, tt.link))
		})
	}
}
