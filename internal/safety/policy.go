package safety

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"tellnoone/backend/internal/alert"
	"tellnoone/backend/internal/config"
	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/models"
)

// ErrEmptyMessage is returned when the message text is missing; nothing is
// detected or logged for such input.
var ErrEmptyMessage = errors.New("safety: message text is required")

// Store is the slice of the storage layer the policy needs: append-only
// safety logging, the rolling escalation window, and alert dedup.
type Store interface {
	SaveSafetyLog(entry *models.SafetyLog) error
	RecentSafetyLogs(userID string, since time.Time, limit int) ([]models.SafetyLog, error)
	MarkEscalationAlerted(userID string, ttl time.Duration) (bool, error)
}

// Decision is the final outcome of the full pipeline for one message.
type Decision struct {
	// Action is allow, block, resources or escalate.
	Action Action `json:"action"`
	// Allowed reports whether the message may still be sent. Resources keeps
	// the send; block and escalate do not.
	Allowed bool `json:"allowed"`
	// Verdict is the merged assessment that produced the action.
	Verdict Verdict `json:"verdict"`
	// Resources holds crisis hotlines to surface, when any crisis level was
	// detected.
	Resources []Resource `json:"resources,omitempty"`
}

// Service is the single safety decision point invoked by every
// message-sending path.
type Service struct {
	Storage    Store
	Classifier Classifier
	Alerter    alert.Alerter
}

// NewService creates the safety policy service.
func NewService(store Store, classifier Classifier, alerter alert.Alerter) *Service {
	if alerter == nil {
		alerter = alert.Nop{}
	}
	return &Service{Storage: store, Classifier: classifier, Alerter: alerter}
}

// CheckMessage runs the two-stage pipeline for one outbound message.
//
// The local pattern detector decides first: PII or high crisis hard-blocks
// without ever invoking the classifier (the classifier must never override a
// local block). Otherwise the semantic classifier's verdict is merged in.
// Every non-allow decision writes a best-effort safety log entry and is then
// re-checked against the rolling escalation window.
//
// A rate-limited classifier (llm.ErrRateLimited) is the only error surfaced
// to the caller: it is retryable and produces no decision. All other
// classifier failures degrade to allow.
func (s *Service) CheckMessage(ctx context.Context, userID, text, conversationContext string) (*Decision, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	// Stage 1: local pattern detection.
	pii := DetectPII(text)
	if pii.HasPII {
		decision := &Decision{
			Action:  ActionBlock,
			Allowed: false,
			Verdict: Verdict{
				IsSafe:         false,
				Concerns:       pii.Types,
				Severity:       "medium",
				Recommendation: ActionBlock,
				Explanation:    pii.Message,
				DetectedPII:    pii.Types,
				CrisisLevel:    CrisisNone,
			},
		}
		return s.finalize(ctx, userID, decision), nil
	}

	crisis := DetectCrisis(text)
	if crisis.Level == CrisisHigh {
		decision := &Decision{
			Action:  ActionBlock,
			Allowed: false,
			Verdict: Verdict{
				IsSafe:         false,
				Concerns:       crisis.Keywords,
				Severity:       string(CrisisHigh),
				Recommendation: ActionBlock,
				Explanation:    "Message contains direct crisis language",
				CrisisLevel:    CrisisHigh,
			},
			Resources: ResourcesFor(CrisisHigh),
		}
		return s.finalize(ctx, userID, decision), nil
	}

	// Stage 2: semantic classification.
	verdict, err := s.Classifier.Classify(ctx, text, conversationContext)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrRateLimited):
			return nil, err
		case errors.Is(err, llm.ErrQuotaExhausted):
			s.Alerter.QuotaExhausted(err.Error())
			verdict = allowVerdict()
		default:
			log.Printf("WARNING: Classifier error, failing open: %v", err)
			verdict = allowVerdict()
		}
	}

	merged := *verdict
	merged.CrisisLevel = MaxCrisisLevel(crisis.Level, verdict.CrisisLevel)
	merged.Concerns = append(merged.Concerns, crisis.Keywords...)
	if merged.Severity == "" && merged.CrisisLevel != CrisisNone {
		merged.Severity = string(merged.CrisisLevel)
	}

	decision := &Decision{Verdict: merged}
	switch {
	case merged.Recommendation == ActionBlock:
		decision.Action = ActionBlock
		decision.Allowed = false
	case merged.Recommendation == ActionEscalate || merged.CrisisLevel != CrisisNone:
		decision.Action = ActionResources
		decision.Allowed = true
	default:
		decision.Action = ActionAllow
		decision.Allowed = true
	}
	decision.Verdict.IsSafe = decision.Action == ActionAllow
	decision.Resources = ResourcesFor(merged.CrisisLevel)

	return s.finalize(ctx, userID, decision), nil
}

// finalize logs the decision and applies the temporal escalation rule. The
// decision is authoritative even when logging or the window read fails.
func (s *Service) finalize(ctx context.Context, userID string, decision *Decision) *Decision {
	if decision.Action == ActionAllow {
		return decision
	}

	eventType := models.EventPIIBlocked
	if decision.Verdict.CrisisLevel != CrisisNone {
		eventType = models.EventCrisisDetected
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"concerns":       decision.Verdict.Concerns,
		"recommendation": decision.Verdict.Recommendation,
		"explanation":    decision.Verdict.Explanation,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
	entry := &models.SafetyLog{
		UserID:    userID,
		EventType: eventType,
		Severity:  decision.Verdict.Severity,
		Context:   string(payload),
	}
	if err := s.Storage.SaveSafetyLog(entry); err != nil {
		log.Printf("ERROR: Failed to write safety log for user %s: %v", userID, err)
	}

	// Temporal escalation: a pattern of repeated crisis signals outweighs the
	// current message's own classification.
	since := time.Now().Add(-config.EscalationWindow)
	recent, err := s.Storage.RecentSafetyLogs(userID, since, config.EscalationLogCap)
	if err != nil {
		log.Printf("WARNING: Failed to read safety log window for user %s: %v", userID, err)
		return decision
	}
	if len(recent) < config.EscalationMinEvents {
		return decision
	}
	crisisEvents := 0
	for _, entry := range recent {
		if entry.EventType == models.EventCrisisDetected {
			crisisEvents++
		}
	}
	if crisisEvents < config.EscalationMinCrisisEvents {
		return decision
	}

	decision.Action = ActionEscalate
	decision.Allowed = false
	decision.Verdict.Recommendation = ActionEscalate
	decision.Verdict.PatternDetected = true
	if decision.Resources == nil {
		decision.Resources = ResourcesFor(CrisisMedium)
	}

	first, err := s.Storage.MarkEscalationAlerted(userID, config.EscalationAlertCooldown)
	if err != nil {
		log.Printf("WARNING: Escalation alert dedup failed for user %s: %v", userID, err)
		return decision
	}
	if first {
		s.Alerter.CrisisEscalation(userID, crisisEvents)
	}

	return decision
}
