package safety

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"tellnoone/backend/internal/llm"
)

// classifierSystemPrompt is the fixed instruction contract for the semantic
// classifier. It mirrors the local detector's categories but with
// natural-language judgment, and demands a bare-JSON response.
const classifierSystemPrompt = `You are a safety guardian for a mental health support platform. Analyze messages for:
1. ACTUAL PII - full names (First AND Last), complete addresses with street numbers, phone numbers, email addresses, social media handles, exact ages/birthdates, SSNs, credit cards
2. Crisis signals (suicidal ideation, self-harm plans, immediate danger)
3. Manipulation/grooming patterns
4. Harassment or abusive language

IMPORTANT: Do NOT flag:
- Personal pronouns (I, me, my, myself, mine)
- General emotions or feelings
- Vague references to age/location without specifics
- Common first names without last names
- General support-seeking language

Respond with ONLY valid JSON (no markdown formatting):
{
  "isSafe": boolean,
  "concerns": ["type1", "type2"],
  "severity": "low" | "medium" | "high",
  "recommendation": "allow" | "block" | "escalate" | "resources",
  "explanation": "brief explanation",
  "detectedPII": ["phone", "email"],
  "crisisLevel": "none" | "low" | "medium" | "high"
}`

// Completer is the slice of the LLM gateway client the classifier needs.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Classifier produces a semantic safety verdict for a message that already
// passed the local pattern detector.
type Classifier interface {
	Classify(ctx context.Context, message, conversationContext string) (*Verdict, error)
}

// LLMClassifier delegates judgment to a chat-completions gateway.
//
// Failure policy: rate-limit (429) and quota (402) gateway errors propagate
// to the caller as distinct error kinds; every other failure, including a
// malformed response, fails open with an allow verdict. Classifier
// unavailability must never make messaging unusable.
type LLMClassifier struct {
	Gateway Completer
}

func NewLLMClassifier(gateway Completer) *LLMClassifier {
	return &LLMClassifier{Gateway: gateway}
}

func (c *LLMClassifier) Classify(ctx context.Context, message, conversationContext string) (*Verdict, error) {
	req := llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: classifierSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Message: %q\nContext: %s", message, conversationContext)},
		},
	}

	raw, err := c.Gateway.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, llm.ErrRateLimited) || errors.Is(err, llm.ErrQuotaExhausted) {
			return nil, err
		}
		log.Printf("WARNING: Safety classifier unavailable, failing open: %v", err)
		return allowVerdict(), nil
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &verdict); err != nil {
		log.Printf("WARNING: Failed to parse classifier response, failing open: %v", err)
		return allowVerdict(), nil
	}

	// Defensive defaults for a structurally valid but incomplete answer.
	if verdict.Recommendation == "" {
		verdict.Recommendation = ActionAllow
	}
	if verdict.CrisisLevel == "" {
		verdict.CrisisLevel = CrisisNone
	}

	return &verdict, nil
}

func allowVerdict() *Verdict {
	return &Verdict{
		IsSafe:         true,
		Severity:       "low",
		Recommendation: ActionAllow,
		Explanation:    "Safety check completed",
		CrisisLevel:    CrisisNone,
	}
}
