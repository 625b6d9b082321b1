// Package match implements anonymous 1:1 pairing: compatibility-scored
// selection over waiting seekers, an atomic claim of the chosen slot, and the
// waiting-record fallback when nobody fits or the claim race is lost.
package match

import (
	"context"
	"errors"
	"log"

	"tellnoone/backend/internal/config"
	"tellnoone/backend/internal/models"
)

var (
	// ErrMissingTopic is returned when the match request has no topic.
	ErrMissingTopic = errors.New("match: topic is required")
	// ErrMissingUser is returned when the match request has no user ID.
	ErrMissingUser = errors.New("match: user id is required")
	// ErrNotParticipant is returned when a user acts on a match they are not
	// part of.
	ErrNotParticipant = errors.New("match: user is not a participant")
)

// Store is the slice of the storage layer the matchmaker needs.
type Store interface {
	GetProfile(userID string) (*models.Profile, error)
	FindWaitingMatches(topic, excludeUserID string) ([]models.AnonymousMatch, error)
	ClaimWaitingMatch(matchID, userID string) (bool, error)
	CreateWaitingMatch(m *models.AnonymousMatch) error
	GetMatchByID(matchID string) (*models.AnonymousMatch, error)
	EndMatch(matchID string) error
	PublishMatchEvent(event models.MatchEvent) error
}

// Request carries a seeker's topic and preferences.
type Request struct {
	UserID         string   `json:"user_id"`
	Topic          string   `json:"topic"`
	SeekingSupport bool     `json:"seeking_support"`
	SupportStyles  []string `json:"support_styles"`
}

// Outcome is the result of one match request: either paired immediately or
// registered as waiting. Waiting callers poll Status every PollInterval until
// the match goes active or PollTimeout elapses.
type Outcome struct {
	Matched   bool   `json:"matched"`
	MatchID   string `json:"match_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Waiting   bool   `json:"waiting,omitempty"`
}

// StatusInfo is the polling view of a match.
type StatusInfo struct {
	MatchID   string `json:"match_id"`
	Status    string `json:"status"`
	PartnerID string `json:"partner_id,omitempty"`
	Topic     string `json:"topic"`
}

// Service is the matchmaker.
type Service struct {
	Storage Store
}

// NewService creates the matchmaker.
func NewService(store Store) *Service {
	return &Service{Storage: store}
}

// RequestMatch pairs the requester with the most compatible waiting seeker on
// the same topic, or registers them as waiting.
//
// The claim of the selected slot is a compare-and-swap conditioned on the row
// still being waiting; exactly one of two simultaneous seekers can win it,
// and the loser falls through to creating a fresh waiting record.
func (s *Service) RequestMatch(ctx context.Context, req Request) (*Outcome, error) {
	if req.UserID == "" {
		return nil, ErrMissingUser
	}
	if req.Topic == "" {
		return nil, ErrMissingTopic
	}

	candidates, err := s.Storage.FindWaitingMatches(req.Topic, req.UserID)
	if err != nil {
		return nil, err
	}

	best := s.selectCandidate(req, candidates)
	if best != nil {
		claimed, err := s.Storage.ClaimWaitingMatch(best.ID, req.UserID)
		if err != nil {
			return nil, err
		}
		if claimed {
			event := models.MatchEvent{
				Type:      models.EventMatchFound,
				MatchID:   best.ID,
				UserID:    best.User1ID,
				PartnerID: req.UserID,
				Topic:     req.Topic,
			}
			if err := s.Storage.PublishMatchEvent(event); err != nil {
				log.Printf("WARNING: Match %s claimed but partner notification failed: %v", best.ID, err)
			}
			return &Outcome{Matched: true, MatchID: best.ID, PartnerID: best.User1ID}, nil
		}
		// Lost the race; treat it as if no candidate existed.
		log.Printf("INFO: Lost claim race for match %s, creating waiting record for %s", best.ID, req.UserID)
	}

	waiting := &models.AnonymousMatch{
		User1ID: req.UserID,
		Topic:   req.Topic,
	}
	if err := s.Storage.CreateWaitingMatch(waiting); err != nil {
		return nil, err
	}
	return &Outcome{Matched: false, MatchID: waiting.ID, Waiting: true}, nil
}

// selectCandidate scores every waiting candidate against the requester and
// returns the one with the strictly highest score. Ties keep the first
// encountered candidate; candidates arrive ordered by creation time, so the
// tie-break is arbitrary but deterministic.
func (s *Service) selectCandidate(req Request, candidates []models.AnonymousMatch) *models.AnonymousMatch {
	var best *models.AnonymousMatch
	bestScore := -1

	for i := range candidates {
		candidate := &candidates[i]
		profile, err := s.Storage.GetProfile(candidate.User1ID)
		if err != nil {
			log.Printf("WARNING: Skipping candidate %s, profile load failed: %v", candidate.User1ID, err)
			continue
		}

		score := Score(req, profile)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	return best
}

// Score computes the compatibility between a requester and a waiting
// candidate's profile: complementary roles score highest, same-role matches
// stay allowed at lower priority, and every shared support style adds a
// small bonus. A missing profile scores as a same-role match with no styles.
func Score(req Request, profile *models.Profile) int {
	if profile == nil {
		return config.ScoreSameRole
	}

	score := 0
	if profile.SeekingSupport != req.SeekingSupport {
		score += config.ScoreComplementaryRoles
	} else {
		score += config.ScoreSameRole
	}

	styles := make(map[string]bool, len(req.SupportStyles))
	for _, style := range req.SupportStyles {
		styles[style] = true
	}
	for _, style := range profile.SupportStyles {
		if styles[style] {
			score += config.ScoreSharedStyle
		}
	}

	return score
}

// Status returns the polling view of a match for one of its participants.
func (s *Service) Status(ctx context.Context, matchID, userID string) (*StatusInfo, error) {
	match, err := s.Storage.GetMatchByID(matchID)
	if err != nil {
		return nil, err
	}
	if match.User1ID != userID && (match.User2ID == nil || *match.User2ID != userID) {
		return nil, ErrNotParticipant
	}
	return &StatusInfo{
		MatchID:   match.ID,
		Status:    match.Status,
		PartnerID: match.PartnerOf(userID),
		Topic:     match.Topic,
	}, nil
}

// End terminates a match on behalf of either participant and notifies the
// partner.
func (s *Service) End(ctx context.Context, matchID, userID string) error {
	match, err := s.Storage.GetMatchByID(matchID)
	if err != nil {
		return err
	}
	if match.User1ID != userID && (match.User2ID == nil || *match.User2ID != userID) {
		return ErrNotParticipant
	}

	if err := s.Storage.EndMatch(matchID); err != nil {
		return err
	}

	if partner := match.PartnerOf(userID); partner != "" {
		event := models.MatchEvent{
			Type:    models.EventMatchEnded,
			MatchID: matchID,
			UserID:  partner,
		}
		if err := s.Storage.PublishMatchEvent(event); err != nil {
			log.Printf("WARNING: Match %s ended but partner notification failed: %v", matchID, err)
		}
	}
	return nil
}

// PollInterval and PollTimeout document the client polling contract for
// waiting outcomes.
var (
	PollInterval = config.MatchPollInterval
	PollTimeout  = config.MatchPollTimeout
)
