package scrape

import "fmt"

// Scrape operations reported in Error.Op.
const (
	OpProfile  = "create profile"
	OpStart    = "start browser"
	OpNavigate = "navigate"
	OpCapture  = "capture html"
	OpFetch    = "fetch"
)

// Error is a page that could not be retrieved.
type Error struct {
	URL        string
	Op         string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("scrape %s %s: HTTP %d: %v", e.Op, e.URL, e.StatusCode, e.Cause)
	}

	return fmt.Sprintf("scrape %s %s: %v", e.Op, e.URL, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
