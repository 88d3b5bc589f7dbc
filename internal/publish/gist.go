// Package publish posts extracted articles as GitHub gists.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Publisher defaults.
const (
	DefaultAPIURL  = "https://api.github.com"
	DefaultTimeout = 30 * time.Second

	maxErrorBodyBytes = 64 << 10
)

var errMissingToken = errors.New("gist token is required")

// Error is a gist request that did not return 201 Created.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gist publish failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// Options configures GistPublisher.
type Options struct {
	APIURL  string
	Token   string
	Public  bool
	Timeout time.Duration
}

// GistPublisher creates one gist per published article.
type GistPublisher struct {
	apiURL string
	token  string
	public  bool
	timeout time.Duration
	client  *http.Client
}

type gistFile struct {
	Content string `json:"content"`
}

type gistRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type gistResponse struct {
	HTMLURL string `json:"html_url"`
}

// NewGistPublisher creates a GistPublisher. opts.Timeout bounds every Publish
// call whatever client is supplied; a nil client gets a default one.
func NewGistPublisher(client *http.Client, opts Options) (*GistPublisher, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errMissingToken
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &GistPublisher{
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		token:   opts.Token,
		public:  opts.Public,
		timeout: opts.Timeout,
		client:  client,
	}, nil
}

// Publish creates a gist holding content under filename and returns its html_url.
// A response other than 201 is returned as *Error carrying the response body.
func (p *GistPublisher) Publish(ctx context.Context, content, description, filename string) (string, error) {
	payload, err := json.Marshal(gistRequest{
		Description: description,
		Public:      p.public,
		Files:       map[string]gistFile{filename: {Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gist request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/gists", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create gist request: %w", err)
	}

	req.Header.Set("Authorization", "token "+p.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send gist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var created gistResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&created); decodeErr != nil {
		return "", fmt.Errorf("decode gist response: %w", decodeErr)
	}

	return created.HTMLURL, nil
}
