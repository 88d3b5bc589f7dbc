package extract_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgist/internal/extract"
)

func TestOpenAICompleter_Complete(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotAuth  string
		gotModel string
		gotText  string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		if len(req.Messages) > 0 {
			gotText = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gemini-2.5-flash",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "# Heading"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer srv.Close()

	completer := extract.NewOpenAICompleter("gemini", "test-key", srv.URL+"/v1beta/openai", "gemini-2.5-flash")

	reply, err := completer.Complete(context.Background(), "prompt text")
	require.NoError(t, err)

	assert.Equal(t, "# Heading", reply)
	assert.Equal(t, "/v1beta/openai/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gemini-2.5-flash", gotModel)
	assert.Equal(t, "prompt text", gotText)
	assert.Equal(t, "gemini", completer.Name())
}

func TestOpenAICompleter_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	_, err := extract.NewOpenAICompleter("openai", "k", srv.URL, "m").Complete(context.Background(), "p")
	require.Error(t, err)
}

func TestNewGeminiCompleter_DefaultModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gemini", extract.NewGeminiCompleter("k", "").Name())
}

func TestAnthropicCompleter_Complete(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "# Part one"}, {"type": "text", "text": "\n\nPart two"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	completer := extract.NewAnthropicCompleter("test-key", "", 0,
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)

	reply, err := completer.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "# Part one\n\nPart two", reply)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "anthropic", completer.Name())
}
