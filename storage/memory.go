package storage

import (
	"sync"

	"tourmate.app/models"
)

// MemoryAuthStateStore is the in-memory fallback auth-state store used when
// redis is disabled
type MemoryAuthStateStore struct {
	data  map[uint]map[string]string
	mutex sync.RWMutex
}

func NewMemoryAuthStateStore() *MemoryAuthStateStore {
	return &MemoryAuthStateStore{
		data: make(map[uint]map[string]string),
	}
}

func (s *MemoryAuthStateStore) Get(userID uint, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys, exists := s.data[userID]
	if !exists {
		return "", nil
	}
	return keys[key], nil
}

func (s *MemoryAuthStateStore) Set(userID uint, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	keys, exists := s.data[userID]
	if !exists {
		keys = make(map[string]string)
		s.data[userID] = keys
	}
	keys[key] = value
	return nil
}

func (s *MemoryAuthStateStore) Delete(userID uint, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if keys, exists := s.data[userID]; exists {
		delete(keys, key)
	}
	return nil
}

// MemorySessionStore is the in-memory fallback survey session store
type MemorySessionStore struct {
	sessions map[uint]models.SurveySession
	mutex    sync.RWMutex
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uint]models.SurveySession),
	}
}

// GetSurvey returns a copy of the stored session, or an empty session when
// none exists
func (s *MemorySessionStore) GetSurvey(userID uint) (*models.SurveySession, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[userID]
	if !exists {
		return &models.SurveySession{}, nil
	}

	copied := session
	copied.MoodAdjectives = append([]string(nil), session.MoodAdjectives...)
	return &copied, nil
}

// SetSurvey atomically replaces the stored snapshot with the given one
func (s *MemorySessionStore) SetSurvey(userID uint, session *models.SurveySession) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if session == nil {
		delete(s.sessions, userID)
		return nil
	}

	stored := *session
	stored.MoodAdjectives = append([]string(nil), session.MoodAdjectives...)
	s.sessions[userID] = stored
	return nil
}

func (s *MemorySessionStore) ClearSurvey(userID uint) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, userID)
	return nil
}

// Ensure implementations satisfy interfaces
var _ AuthStateStore = (*MemoryAuthStateStore)(nil)
var _ SessionStore = (*MemorySessionStore)(nil)
