package scrape

import (
	"strings"
)

// DefaultConsentLabels are the button captions clicked to dismiss cookie banners.
var DefaultConsentLabels = []string{"Rifiuta tutto", "Reject all", "Accept all", "I agree"}

// ConsentMatcher locates the element that dismisses a consent banner.
type ConsentMatcher interface {
	// XPath returns the expression evaluated against the page.
	XPath() string
	// Name identifies the matcher in logs.
	Name() string
}

// LabelMatcher matches a clickable element whose normalized text equals Label.
type LabelMatcher struct {
	Label string
}

func (m LabelMatcher) XPath() string {
	return "//*[self::button or self::span or self::a][normalize-space(.)=" + xpathLiteral(m.Label) + "]"
}

func (m LabelMatcher) Name() string { return "label:" + m.Label }

// XPathMatcher uses a caller-supplied expression.
type XPathMatcher struct {
	Expr        string
	Description string
}

func (m XPathMatcher) XPath() string { return m.Expr }

func (m XPathMatcher) Name() string {
	if m.Description != "" {
		return m.Description
	}
	return "xpath:" + m.Expr
}

// MatchersFromLabels builds a LabelMatcher per non-blank label, keeping order.
func MatchersFromLabels(labels []string) []ConsentMatcher {
	matchers := make([]ConsentMatcher, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		matchers = append(matchers, LabelMatcher{Label: label})
	}

	return matchers
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}

	return "concat(" + strings.Join(quoted, ", ") + ")"
}
