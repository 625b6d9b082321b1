// Package llm is a minimal client for an OpenAI-compatible chat-completions
// gateway. It only covers what the safety classifier, feed moderation and the
// peer companion need: one round trip, distinct rate-limit/quota errors, and
// code-fence stripping for models that wrap JSON answers in markdown.
package llm

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

var (
	// ErrRateLimited maps HTTP 429: retryable, try again shortly.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrQuotaExhausted maps HTTP 402: operational fault, not retryable.
	ErrQuotaExhausted = errors.New("llm: quota exhausted")
)

// Message is a single chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call. Temperature and MaxTokens are
// omitted from the wire request when zero.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client talks to a single chat-completions endpoint with a fixed model.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a gateway client. baseURL is the API root without the
// trailing /chat/completions path.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type wireRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete performs one chat-completion round trip and returns the content of
// the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(wireRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrQuotaExhausted
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("llm: gateway returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: reading gateway response: %w", err)
	}

	var parsed wireResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("llm: decoding gateway response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("llm: gateway returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// StripCodeFence removes an optional markdown code fence (```json ... ``` or
// ``` ... ```) wrapping a model answer, returning the inner text trimmed.
func StripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```json")
		out = strings.TrimPrefix(out, "```")
		out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	}
	return strings.TrimSpace(out)
}
