package safety_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tellnoone/backend/internal/models"
	"tellnoone/backend/internal/safety"
)

// MockStore is a testify mock of the safety.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSafetyLog(entry *models.SafetyLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStore) RecentSafetyLogs(userID string, since time.Time, limit int) ([]models.SafetyLog, error) {
	args := m.Called(userID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SafetyLog), args.Error(1)
}

func (m *MockStore) MarkEscalationAlerted(userID string, ttl time.Duration) (bool, error) {
	args := m.Called(userID, ttl)
	return args.Bool(0), args.Error(1)
}

// countingClassifier returns a fixed verdict and records how often it ran.
type countingClassifier struct {
	verdict *safety.Verdict
	err     error
	calls   int
}

func (c *countingClassifier) Classify(ctx context.Context, message, conversationContext string) (*safety.Verdict, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if c.verdict != nil {
		v := *c.verdict
		return &v, nil
	}
	return &safety.Verdict{
		IsSafe:         true,
		Severity:       "low",
		Recommendation: safety.ActionAllow,
		CrisisLevel:    safety.CrisisNone,
	}, nil
}

// recordingAlerter captures operator alerts.
type recordingAlerter struct {
	escalations []string
	quotaAlerts []string
}

func (r *recordingAlerter) CrisisEscalation(userID string, crisisEvents int) {
	r.escalations = append(r.escalations, userID)
}

func (r *recordingAlerter) QuotaExhausted(detail string) {
	r.quotaAlerts = append(r.quotaAlerts, detail)
}
