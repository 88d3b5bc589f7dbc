package publish

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	markdownExt      = ".md"
	fallbackFilename = "article"
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SafeFilename derives a gist filename from an article title: characters
// forbidden in file names are removed, whitespace runs become "_", and ".md" is
// appended. A title that sanitizes to nothing falls back to the host of link.
func SafeFilename(title, link string) string {
	name := sanitize(title)
	if name == "" {
		name = sanitize(linkHost(link))
	}
	if name == "" {
		name = fallbackFilename
	}

	return name + markdownExt
}

func sanitize(s string) string {
	cleaned := unsafeChars.ReplaceAllString(s, "")

	return whitespace.ReplaceAllString(strings.TrimSpace(cleaned), "_")
}

func linkHost(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}

	return u.Hostname()
}
