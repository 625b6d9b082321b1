package config

import "time"

const (
	// Escalation pattern window
	EscalationWindow          = 60 * time.Minute
	EscalationLogCap          = 5
	EscalationMinEvents       = 3
	EscalationMinCrisisEvents = 2
	EscalationAlertCooldown   = 60 * time.Minute

	// Matching (client polling contract, documented for API consumers)
	MatchPollInterval = 3 * time.Second
	MatchPollTimeout  = 60 * time.Second

	// Compatibility scoring
	ScoreComplementaryRoles = 10
	ScoreSameRole           = 3
	ScoreSharedStyle        = 2
)
