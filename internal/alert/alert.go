// Package alert notifies operators about safety events that need a human:
// repeated crisis patterns and exhausted LLM quota.
package alert

// Alerter delivers operator notifications. Implementations must be
// best-effort; a failed alert never blocks a safety decision.
type Alerter interface {
	// CrisisEscalation reports that a user's recent safety log shows a
	// repeated-crisis pattern and was escalated.
	CrisisEscalation(userID string, crisisEvents int)
	// QuotaExhausted reports that the classification gateway returned a
	// billing/quota failure and the pipeline is running fail-open.
	QuotaExhausted(detail string)
}

// Nop is an Alerter that does nothing. Used when no Telegram token is
// configured.
type Nop struct{}

func (Nop) CrisisEscalation(string, int) {}
func (Nop) QuotaExhausted(string)        {}
