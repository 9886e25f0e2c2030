package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledWithoutKey(t *testing.T) {
	c := NewCommentator("  ")
	assert.False(t, c.Enabled())
	_, err := c.Explain(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrDisabled)

	var nilC *Commentator
	assert.False(t, nilC.Enabled())
}

func TestExplainSendsSummary(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":0,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Interpretation: fine  "}}]}`)
	}))
	defer srv.Close()

	c := NewCommentator("sk-test", option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
	out, err := c.Explain(context.Background(), "Sharpe 1.20")
	require.NoError(t, err)
	assert.Equal(t, "Interpretation: fine", out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "Sharpe 1.20")
}

func TestExplainSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c := NewCommentator("sk-bad", option.WithBaseURL(srv.URL+"/v1/"), option.WithMaxRetries(0))
	_, err := c.Explain(context.Background(), "x")
	assert.ErrorContains(t, err, "OpenAI API error")
}
