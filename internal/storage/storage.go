// Package storage is the persistence layer: PostgreSQL (via gorm) for match
// records, safety logs and profiles; Redis for ban flags, match-event pub/sub
// and escalation-alert dedup keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tellnoone/backend/internal/models"
)

// ErrMatchNotFound is returned when a match ID does not exist.
var ErrMatchNotFound = errors.New("storage: match not found")

// Storage is the full persistence surface used across the service.
type Storage interface {
	// Profiles (read-only to this service)
	GetProfile(userID string) (*models.Profile, error)

	// Matches
	FindWaitingMatches(topic, excludeUserID string) ([]models.AnonymousMatch, error)
	ClaimWaitingMatch(matchID, userID string) (bool, error)
	CreateWaitingMatch(m *models.AnonymousMatch) error
	GetMatchByID(matchID string) (*models.AnonymousMatch, error)
	EndMatch(matchID string) error
	PruneStaleWaitingMatches(olderThan time.Time) (int64, error)

	// Safety logs
	SaveSafetyLog(entry *models.SafetyLog) error
	RecentSafetyLogs(userID string, since time.Time, limit int) ([]models.SafetyLog, error)

	// Redis-backed state
	IsUserBanned(anonID string) (bool, error)
	MarkEscalationAlerted(userID string, ttl time.Duration) (bool, error)
	PublishMatchEvent(event models.MatchEvent) error
}

// Service implements Storage over gorm and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

var _ Storage = (*Service)(nil)

// NewService constructs the storage service.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// GetProfile loads the matchmaking slice of a user's profile. A missing
// profile is not an error; matchmaking scores such users with defaults.
func (s *Service) GetProfile(userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.First(&profile, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to load profile %s: %v", userID, err)
		return nil, err
	}
	return &profile, nil
}

// FindWaitingMatches returns all waiting matches for a topic, excluding rows
// opened by excludeUserID, oldest first. The ascending order makes the
// matchmaker's tie-break deterministic.
func (s *Service) FindWaitingMatches(topic, excludeUserID string) ([]models.AnonymousMatch, error) {
	var matches []models.AnonymousMatch
	err := s.DB.
		Where("status = ? AND topic = ? AND user1_id <> ?", models.MatchWaiting, topic, excludeUserID).
		Order("created_at asc").
		Find(&matches).Error
	if err != nil {
		log.Printf("ERROR: Failed to query waiting matches for topic %s: %v", topic, err)
		return nil, err
	}
	return matches, nil
}

// ClaimWaitingMatch atomically transitions a waiting match to active with
// userID as the partner. The update is conditioned on the row still being
// waiting; it returns false when another seeker won the race.
func (s *Service) ClaimWaitingMatch(matchID, userID string) (bool, error) {
	result := s.DB.Model(&models.AnonymousMatch{}).
		Where("id = ? AND status = ?", matchID, models.MatchWaiting).
		Updates(map[string]interface{}{
			"user2_id": userID,
			"status":   models.MatchActive,
		})
	if result.Error != nil {
		log.Printf("ERROR: Failed to claim match %s: %v", matchID, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateWaitingMatch inserts a new waiting match row. A waiting match has no
// partner, so user2_id is always nil on insert.
func (s *Service) CreateWaitingMatch(m *models.AnonymousMatch) error {
	m.Status = models.MatchWaiting
	m.User2ID = nil
	if err := s.DB.Create(m).Error; err != nil {
		log.Printf("ERROR: Failed to create waiting match for user %s: %v", m.User1ID, err)
		return err
	}
	return nil
}

// GetMatchByID loads one match row.
func (s *Service) GetMatchByID(matchID string) (*models.AnonymousMatch, error) {
	var match models.AnonymousMatch
	err := s.DB.First(&match, "id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get match %s: %v", matchID, err)
		return nil, err
	}
	return &match, nil
}

// EndMatch marks a match ended and stamps ended_at.
func (s *Service) EndMatch(matchID string) error {
	return s.DB.Model(&models.AnonymousMatch{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"status":   models.MatchEnded,
			"ended_at": gorm.Expr("NOW()"),
		}).Error
}

// PruneStaleWaitingMatches deletes waiting rows older than the cutoff and
// returns how many were removed. Waiting rows are otherwise never cleaned up;
// abandoned seekers simply orphan them.
func (s *Service) PruneStaleWaitingMatches(olderThan time.Time) (int64, error) {
	result := s.DB.
		Where("status = ? AND created_at < ?", models.MatchWaiting, olderThan).
		Delete(&models.AnonymousMatch{})
	return result.RowsAffected, result.Error
}

// SaveSafetyLog appends one safety log entry. Entries are never updated or
// deleted by this service.
func (s *Service) SaveSafetyLog(entry *models.SafetyLog) error {
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR: Failed to save safety log for user %s: %v", entry.UserID, err)
		return err
	}
	return nil
}

// RecentSafetyLogs returns up to limit entries for a user since the given
// time, newest first. created_at ordering is the sole ordering guarantee the
// escalation window relies on.
func (s *Service) RecentSafetyLogs(userID string, since time.Time, limit int) ([]models.SafetyLog, error) {
	var entries []models.SafetyLog
	err := s.DB.
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		log.Printf("ERROR: Failed to load safety logs for user %s: %v", userID, err)
		return nil, err
	}
	return entries, nil
}

// IsUserBanned checks the ban flag in Redis.
func (s *Service) IsUserBanned(anonID string) (bool, error) {
	key := "ban:" + anonID
	status, err := s.Redis.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// MarkEscalationAlerted sets a per-user cooldown key and reports whether this
// call set it first. Used to avoid duplicate operator alerts for the same
// escalation window.
func (s *Service) MarkEscalationAlerted(userID string, ttl time.Duration) (bool, error) {
	key := "escalation_alert:" + userID
	return s.Redis.SetNX(s.Ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// matchEventsChannel is the Redis Pub/Sub channel carrying match events.
const matchEventsChannel = "match:events"

// PublishMatchEvent publishes a match event for the notification hub.
func (s *Service) PublishMatchEvent(event models.MatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(s.Ctx, matchEventsChannel, string(payload)).Err(); err != nil {
		log.Printf("ERROR: Failed to publish match event %s for user %s: %v", event.Type, event.UserID, err)
		return err
	}
	return nil
}

// SubscribeMatchEvents subscribes to the match event channel. The caller owns
// the returned PubSub and must close it.
func (s *Service) SubscribeMatchEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, matchEventsChannel)
}
