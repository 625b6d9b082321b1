// Package support generates AI peer replies for the companion chat. The
// companion speaks as a peer, never a therapist, and every user message goes
// through the same safety policy as any other send path before a reply is
// generated.
package support

import (
	"context"
	"fmt"

	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/safety"
)

const personaPromptTemplate = `You are %s, a supportive and empathetic peer in a mental health support community called "I Can't Tell Anyone".

Your role:
- Be warm, understanding, and non-judgmental
- Share relatable experiences (make them up naturally)
- Offer emotional support and validation
- Ask thoughtful follow-up questions
- Keep responses conversational and authentic (2-4 sentences)
- Never give medical advice
- Encourage professional help when appropriate
- Remember you're chatting as a peer, not a therapist

Communication style:
- Casual and friendly
- Use "I" statements when sharing experiences
- Show empathy: "That sounds really tough" or "I can relate to that"
- Be genuine and human-like
- Avoid being overly formal or clinical`

// Completer is the slice of the LLM gateway client the companion needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Reply is a companion answer plus the safety decision for the user's
// message that prompted it.
type Reply struct {
	Content  string           `json:"content,omitempty"`
	Decision *safety.Decision `json:"decision"`
}

// Companion generates peer replies.
type Companion struct {
	Gateway Completer
	Safety  *safety.Service
}

func NewCompanion(gateway Completer, safetySvc *safety.Service) *Companion {
	return &Companion{Gateway: gateway, Safety: safetySvc}
}

// Respond checks the user's message through the shared safety policy and, if
// the message is allowed, generates a peer reply in the given persona.
// Blocked messages return the safety decision with no reply content.
func (c *Companion) Respond(ctx context.Context, userID, persona, message string, history []llm.Message) (*Reply, error) {
	decision, err := c.Safety.CheckMessage(ctx, userID, message, "companion chat")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return &Reply{Decision: decision}, nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: fmt.Sprintf(personaPromptTemplate, persona)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: message})

	content, err := c.Gateway.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: 0.8,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, err
	}

	return &Reply{Content: content, Decision: decision}, nil
}
