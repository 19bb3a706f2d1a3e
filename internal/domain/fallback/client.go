// Package fallback is the boundary to the external inference collaborator.
// It serializes product boxes into a prompt, sends them to an
// OpenAI-compatible chat endpoint, and sanitizes whatever text comes back
// into validated products. Nothing in this package ever panics or returns
// products that violate the output contract; unrecoverable responses yield
// an empty list, which the caller reports as total extraction failure.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the outbound boundary. The engine only depends on this
// interface; tests substitute canned responses.
type Client interface {
	// Complete sends an extraction prompt and returns the raw response
	// text. The context carries the caller-imposed timeout.
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	defaultTimeout   = 2 * time.Minute
	defaultMaxTokens = 4096

	systemPrompt = "You are a JSON-only API. Return only valid JSON arrays. " +
		"Do not include markdown, comments, or explanations. " +
		"Your output must start with '[' and end with ']'."
)

// HTTPClient talks to an OpenAI-compatible chat completions endpoint
// (vLLM in production).
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewHTTPClient creates a client for the given endpoint. An empty timeout
// falls back to two minutes.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Client over POST /chat/completions.
func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   defaultMaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat completion status %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response carried no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
