package match_test

import (
	"github.com/stretchr/testify/mock"

	"tellnoone/backend/internal/models"
)

// MockStore is a testify mock of the match.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetProfile(userID string) (*models.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockStore) FindWaitingMatches(topic, excludeUserID string) ([]models.AnonymousMatch, error) {
	args := m.Called(topic, excludeUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnonymousMatch), args.Error(1)
}

func (m *MockStore) ClaimWaitingMatch(matchID, userID string) (bool, error) {
	args := m.Called(matchID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateWaitingMatch(match *models.AnonymousMatch) error {
	args := m.Called(match)
	return args.Error(0)
}

func (m *MockStore) GetMatchByID(matchID string) (*models.AnonymousMatch, error) {
	args := m.Called(matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnonymousMatch), args.Error(1)
}

func (m *MockStore) EndMatch(matchID string) error {
	args := m.Called(matchID)
	return args.Error(0)
}

func (m *MockStore) PublishMatchEvent(event models.MatchEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
