package service

import (
	"log"

	"tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/storage"
)

// SurveyService manages the per-user survey session snapshot
type SurveyService struct {
	sessions storage.SessionStore
}

// NewSurveyService creates a new survey service
func NewSurveyService(sessions storage.SessionStore) *SurveyService {
	return &SurveyService{sessions: sessions}
}

// GetSurvey retrieves the current survey snapshot. An absent session comes
// back as an empty snapshot, never nil.
func (s *SurveyService) GetSurvey(userID uint) (*models.SurveySession, error) {
	session, err := s.sessions.GetSurvey(userID)
	if err != nil {
		return nil, errors.NewStorageError("failed to read survey session", err)
	}
	return session, nil
}

// SetSurvey replaces the whole survey snapshot. Fields absent from the
// incoming snapshot are cleared, not retained; the search radius is always
// re-derived from the transportation mode, and the adjectives keep ordered-set
// semantics (first occurrence wins, capped).
func (s *SurveyService) SetSurvey(userID uint, session *models.SurveySession) (*models.SurveySession, error) {
	log.Printf("[DEBUG] SurveyService.SetSurvey called for user: %d\n", userID)

	if session == nil {
		return nil, errors.NewValidationError("survey snapshot is required")
	}

	session.SearchRadiusMeters = models.SearchRadiusForMode(session.TransportationMode)

	incoming := session.MoodAdjectives
	session.MoodAdjectives = nil
	for _, adjective := range incoming {
		session.AddMoodAdjective(adjective)
	}

	if err := s.sessions.SetSurvey(userID, session); err != nil {
		return nil, errors.NewStorageError("failed to store survey session", err)
	}

	return session, nil
}

// ClearSurvey discards the survey snapshot
func (s *SurveyService) ClearSurvey(userID uint) error {
	log.Printf("[DEBUG] SurveyService.ClearSurvey called for user: %d\n", userID)

	if err := s.sessions.ClearSurvey(userID); err != nil {
		return errors.NewStorageError("failed to clear survey session", err)
	}
	return nil
}

// AddMoodAdjective appends a preference tag to the current snapshot.
// Duplicates and tags beyond the cap are silently dropped.
func (s *SurveyService) AddMoodAdjective(userID uint, adjective string) (*models.SurveySession, error) {
	if adjective == "" {
		return nil, errors.NewValidationError("adjective is required")
	}

	session, err := s.GetSurvey(userID)
	if err != nil {
		return nil, err
	}

	if session.AddMoodAdjective(adjective) {
		if err := s.sessions.SetSurvey(userID, session); err != nil {
			return nil, errors.NewStorageError("failed to store survey session", err)
		}
	}

	return session, nil
}

// ConsumeAutoRecommendCategory returns the pending auto-recommendation
// category and clears it so it fires at most once
func (s *SurveyService) ConsumeAutoRecommendCategory(userID uint) (string, error) {
	session, err := s.GetSurvey(userID)
	if err != nil {
		return "", err
	}

	category := session.AutoRecommendCategory
	if category == "" {
		return "", nil
	}

	session.AutoRecommendCategory = ""
	if err := s.sessions.SetSurvey(userID, session); err != nil {
		return "", errors.NewStorageError("failed to store survey session", err)
	}

	return category, nil
}
