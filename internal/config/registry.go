package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/feedgist/internal/domain"
)

//go:embed sources.yaml
var defaultSourcesYAML []byte

type sourcesFile struct {
	Sources []domain.FeedSource `yaml:"sources"`
}

// DefaultSources returns the built-in feed registry.
func DefaultSources() ([]domain.FeedSource, error) {
	return ParseSources(defaultSourcesYAML)
}

// ParseSources reads a YAML document with a top-level "sources" list.
func ParseSources(data []byte) ([]domain.FeedSource, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	return file.Sources, nil
}

// Registry is the ordered, read-only set of feeds a run ingests.
type Registry struct {
	sources []domain.FeedSource
}

// NewRegistry validates sources and keeps them in the given order.
// Names must be unique and URLs absolute http(s).
func NewRegistry(sources []domain.FeedSource) (*Registry, error) {
	seen := make(map[string]struct{}, len(sources))
	kept := make([]domain.FeedSource, 0, len(sources))

	for i, src := range sources {
		src.Name = strings.TrimSpace(src.Name)
		src.URL = strings.TrimSpace(src.URL)

		field := fmt.Sprintf("sources[%d]", i)

		if src.Name == "" {
			return nil, &ValidationError{Field: field + ".name", Value: src.Name, Reason: "must not be empty"}
		}
		if _, dup := seen[src.Name]; dup {
			return nil, &ValidationError{Field: field + ".name", Value: src.Name, Reason: "duplicate source name"}
		}
		if err := validateFeedURL(src.URL); err != nil {
			return nil, &ValidationError{Field: field + ".url", Value: src.URL, Reason: err.Error()}
		}

		seen[src.Name] = struct{}{}
		kept = append(kept, src)
	}

	return &Registry{sources: kept}, nil
}

// Sources returns a copy of the registry in ingestion order.
func (r *Registry) Sources() []domain.FeedSource {
	out := make([]domain.FeedSource, len(r.sources))
	copy(out, r.sources)

	return out
}

// Len returns the number of registered feeds.
func (r *Registry) Len() int {
	return len(r.sources)
}

func validateFeedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}

	return nil
}
