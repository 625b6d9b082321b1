package safety_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/models"
	"tellnoone/backend/internal/safety"
)

func newPolicy(store *MockStore, classifier *countingClassifier) (*safety.Service, *recordingAlerter) {
	alerter := &recordingAlerter{}
	return safety.NewService(store, classifier, alerter), alerter
}

// expectNoEscalation wires the window read to return too few entries for the
// pattern rule to fire.
func expectNoEscalation(store *MockStore) {
	store.On("RecentSafetyLogs", mock.Anything, mock.AnythingOfType("time.Time"), 5).
		Return([]models.SafetyLog{}, nil)
}

func TestCheckMessage_EmptyMessage(t *testing.T) {
	service, _ := newPolicy(new(MockStore), &countingClassifier{})

	_, err := service.CheckMessage(context.Background(), "user1", "   ", "")

	assert.ErrorIs(t, err, safety.ErrEmptyMessage)
}

// TestCheckMessage_PIIBlocksWithoutClassifier verifies the short-circuit:
// a local PII finding decides the outcome and the classifier is never
// consulted, so it can never override the block.
func TestCheckMessage_PIIBlocksWithoutClassifier(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	expectNoEscalation(store)
	classifier := &countingClassifier{}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "my email is sam@example.com", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionBlock, decision.Action)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Verdict.DetectedPII, safety.PIIEmail)
	assert.Equal(t, 0, classifier.calls, "classifier must not run after a local PII block")
	store.AssertExpectations(t)
}

// TestCheckMessage_NameThenCrisis covers the combined case: the PII stage
// decides first, so "My name is Sam, I want to end my life" blocks on the
// name finding with zero classifier calls.
func TestCheckMessage_NameThenCrisis(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	expectNoEscalation(store)
	classifier := &countingClassifier{}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "My name is Sam, I want to end my life", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionBlock, decision.Action)
	assert.Contains(t, decision.Verdict.DetectedPII, safety.PIIName)
	assert.Equal(t, 0, classifier.calls)
}

func TestCheckMessage_HighCrisisBlocksWithResources(t *testing.T) {
	store := new(MockStore)
	var logged *models.SafetyLog
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).
		Run(func(args mock.Arguments) { logged = args.Get(0).(*models.SafetyLog) }).
		Return(nil).Once()
	expectNoEscalation(store)
	classifier := &countingClassifier{}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "I want to end my life", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionBlock, decision.Action)
	assert.False(t, decision.Allowed)
	assert.Equal(t, safety.CrisisHigh, decision.Verdict.CrisisLevel)
	assert.NotEmpty(t, decision.Resources, "high crisis must surface immediate resources")
	assert.Equal(t, 0, classifier.calls, "local high crisis decides without the classifier")
	require.NotNil(t, logged)
	assert.Equal(t, models.EventCrisisDetected, logged.EventType)
}

// TestCheckMessage_LowCrisisAllowsWithResources: "I feel hopeless lately"
// passes the local PII stage, scores crisis low, and is allowed to send with
// a resource prompt.
func TestCheckMessage_LowCrisisAllowsWithResources(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	expectNoEscalation(store)
	classifier := &countingClassifier{}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "I feel hopeless lately", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionResources, decision.Action)
	assert.True(t, decision.Allowed, "low crisis keeps the send")
	assert.Equal(t, safety.CrisisLow, decision.Verdict.CrisisLevel)
	assert.NotEmpty(t, decision.Resources)
	assert.Equal(t, 1, classifier.calls)
}

func TestCheckMessage_ClassifierBlockWins(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	expectNoEscalation(store)
	classifier := &countingClassifier{verdict: &safety.Verdict{
		IsSafe:         false,
		Severity:       "high",
		Recommendation: safety.ActionBlock,
		Explanation:    "grooming pattern",
		CrisisLevel:    safety.CrisisNone,
	}}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "looks harmless locally", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionBlock, decision.Action)
	assert.False(t, decision.Allowed)
}

func TestCheckMessage_ClassifierCrisisMergesMonotonically(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	expectNoEscalation(store)
	// Local detector sees low distress; classifier reads it as medium.
	classifier := &countingClassifier{verdict: &safety.Verdict{
		IsSafe:         false,
		Severity:       "medium",
		Recommendation: safety.ActionResources,
		CrisisLevel:    safety.CrisisMedium,
	}}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "so depressed lately", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionResources, decision.Action)
	assert.Equal(t, safety.CrisisMedium, decision.Verdict.CrisisLevel)
}

func TestCheckMessage_CleanMessageAllows(t *testing.T) {
	store := new(MockStore)
	classifier := &countingClassifier{}
	service, _ := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "today was actually okay", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionAllow, decision.Action)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.Verdict.IsSafe)
	store.AssertNotCalled(t, "SaveSafetyLog", mock.Anything)
}

func TestCheckMessage_RateLimitedPropagates(t *testing.T) {
	store := new(MockStore)
	classifier := &countingClassifier{err: llm.ErrRateLimited}
	service, _ := newPolicy(store, classifier)

	_, err := service.CheckMessage(context.Background(), "user1", "anything", "")

	assert.ErrorIs(t, err, llm.ErrRateLimited)
	store.AssertNotCalled(t, "SaveSafetyLog", mock.Anything)
}

func TestCheckMessage_QuotaExhaustedFailsOpenAndAlerts(t *testing.T) {
	store := new(MockStore)
	classifier := &countingClassifier{err: llm.ErrQuotaExhausted}
	service, alerter := newPolicy(store, classifier)

	decision, err := service.CheckMessage(context.Background(), "user1", "anything", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionAllow, decision.Action)
	assert.Len(t, alerter.quotaAlerts, 1)
}

// TestCheckMessage_LogFailureDoesNotBlockDecision: the decision is
// authoritative even when the audit write fails.
func TestCheckMessage_LogFailureDoesNotBlockDecision(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(assert.AnError).Once()
	expectNoEscalation(store)
	service, _ := newPolicy(store, &countingClassifier{})

	decision, err := service.CheckMessage(context.Background(), "user1", "text me at 5551234567", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionBlock, decision.Action)
}

// TestCheckMessage_PatternEscalation: three recent flagged events, two of
// them crisis, override the current message's own severity.
func TestCheckMessage_PatternEscalation(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	recent := []models.SafetyLog{
		{UserID: "user1", EventType: models.EventCrisisDetected, Severity: "low"},
		{UserID: "user1", EventType: models.EventCrisisDetected, Severity: "low"},
		{UserID: "user1", EventType: models.EventPIIBlocked, Severity: "medium"},
		{UserID: "user1", EventType: models.EventCrisisDetected, Severity: "low"},
	}
	store.On("RecentSafetyLogs", "user1", mock.AnythingOfType("time.Time"), 5).
		Return(recent, nil).Once()
	store.On("MarkEscalationAlerted", "user1", mock.AnythingOfType("time.Duration")).
		Return(true, nil).Once()
	service, alerter := newPolicy(store, &countingClassifier{})

	// The fourth flagged message is only low severity by itself.
	decision, err := service.CheckMessage(context.Background(), "user1", "I feel hopeless lately", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionEscalate, decision.Action)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.Verdict.PatternDetected)
	assert.Len(t, alerter.escalations, 1)
	store.AssertExpectations(t)
}

// TestCheckMessage_PatternEscalationAlertDeduped: a second escalation inside
// the cooldown window escalates again but does not re-alert operators.
func TestCheckMessage_PatternEscalationAlertDeduped(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil)
	recent := []models.SafetyLog{
		{UserID: "user1", EventType: models.EventCrisisDetected},
		{UserID: "user1", EventType: models.EventCrisisDetected},
		{UserID: "user1", EventType: models.EventCrisisDetected},
	}
	store.On("RecentSafetyLogs", "user1", mock.AnythingOfType("time.Time"), 5).Return(recent, nil)
	store.On("MarkEscalationAlerted", "user1", mock.AnythingOfType("time.Duration")).
		Return(false, nil)
	service, alerter := newPolicy(store, &countingClassifier{})

	decision, err := service.CheckMessage(context.Background(), "user1", "I feel hopeless lately", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionEscalate, decision.Action)
	assert.Empty(t, alerter.escalations)
}

// TestCheckMessage_TooFewCrisisEventsNoEscalation: three events with only one
// crisis among them do not trip the pattern rule.
func TestCheckMessage_TooFewCrisisEventsNoEscalation(t *testing.T) {
	store := new(MockStore)
	store.On("SaveSafetyLog", mock.AnythingOfType("*models.SafetyLog")).Return(nil).Once()
	recent := []models.SafetyLog{
		{UserID: "user1", EventType: models.EventCrisisDetected},
		{UserID: "user1", EventType: models.EventPIIBlocked},
		{UserID: "user1", EventType: models.EventPIIBlocked},
	}
	store.On("RecentSafetyLogs", "user1", mock.AnythingOfType("time.Time"), 5).Return(recent, nil)
	service, alerter := newPolicy(store, &countingClassifier{})

	decision, err := service.CheckMessage(context.Background(), "user1", "I feel hopeless lately", "")

	require.NoError(t, err)
	assert.Equal(t, safety.ActionResources, decision.Action)
	assert.Empty(t, alerter.escalations)
	store.AssertNotCalled(t, "MarkEscalationAlerted", mock.Anything, mock.Anything)
}
