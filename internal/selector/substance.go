package selector

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMinTextLength is the visible-text threshold a page must reach to be accepted.
const DefaultMinTextLength = 300

// ErrSubstanceRejected marks a candidate whose page has too little visible text.
// It is a selection outcome, not a failure.
var ErrSubstanceRejected = errors.New("insufficient substantive content")

// nonContentSelector matches markup that never counts as article text.
const nonContentSelector = "script, style, noscript, template, nav, header, footer, aside, form, iframe, svg, button, a"

// SubstanceGate measures the visible text of a page.
type SubstanceGate struct {
	MinTextLength int
}

// NewSubstanceGate creates a gate; a non-positive threshold uses DefaultMinTextLength.
func NewSubstanceGate(minTextLength int) SubstanceGate {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}

	return SubstanceGate{MinTextLength: minTextLength}
}

// TextLength returns the number of runes of visible text left once non-content
// elements and hyperlinks are removed and whitespace runs are collapsed to one space.
func (g SubstanceGate) TextLength(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("parse page html: %w", err)
	}

	doc.Find(nonContentSelector).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	text := strings.Join(strings.Fields(root.Text()), " ")

	return utf8.RuneCountInString(text), nil
}

// Check returns nil when html carries at least MinTextLength runes of visible
// text, and an error wrapping ErrSubstanceRejected otherwise.
func (g SubstanceGate) Check(html string) error {
	length, err := g.TextLength(html)
	if err != nil {
		return err
	}

	if length < g.MinTextLength {
		return fmt.Errorf("%w: %d of %d characters", ErrSubstanceRejected, length, g.MinTextLength)
	}

	return nil
}
