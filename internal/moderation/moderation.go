// Package moderation gates posts for the positive feed through the LLM
// gateway. Unlike the safety classifier, moderation fails CLOSED: if the
// gateway is unavailable or returns garbage, the post is rejected, because an
// unverified post on the positive feed is worse than a delayed one.
package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"tellnoone/backend/internal/llm"
)

const moderatorSystemPrompt = `You are a content moderator for a positive mental health social feed. Analyze if the content is positive, uplifting, encouraging, or inspiring.

APPROVE content that is:
- Motivational quotes or messages
- Personal growth stories
- Expressions of gratitude
- Encouraging messages
- Celebration of achievements
- Helpful mental health tips
- Inspirational stories
- Acts of kindness

REJECT content that is:
- Negative, discouraging or hopeless
- Venting or complaints
- Crisis content or descriptions of self-harm
- Personal identifying information
- Advertising or spam

Respond with ONLY valid JSON (no markdown formatting):
{
  "isPositive": boolean,
  "reason": "brief explanation"
}`

// Completer is the slice of the LLM gateway client moderation needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Result is the moderation outcome for one post.
type Result struct {
	IsPositive bool   `json:"isPositive"`
	Reason     string `json:"reason"`
}

// Service moderates positive-feed posts.
type Service struct {
	Gateway Completer
}

func NewService(gateway Completer) *Service {
	return &Service{Gateway: gateway}
}

// ModeratePost asks the gateway whether a post belongs on the positive feed.
func (s *Service) ModeratePost(ctx context.Context, title, content string) (*Result, error) {
	if title == "" {
		title = "No title"
	}
	req := llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: moderatorSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\nContent: %s", title, content)},
		},
	}

	raw, err := s.Gateway.Complete(ctx, req)
	if err != nil {
		log.Printf("WARNING: Feed moderation gateway failure, rejecting post: %v", err)
		return &Result{IsPositive: false, Reason: "Unable to verify content positivity"}, nil
	}

	var result Result
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &result); err != nil {
		log.Printf("WARNING: Failed to parse moderation response, rejecting post: %v", err)
		return &Result{IsPositive: false, Reason: "Unable to analyze content"}, nil
	}

	return &result, nil
}
