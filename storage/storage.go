// Package storage implements the per-user state stores backing the survey
// session and the persisted auth-state keys.
package storage

import (
	"tourmate.app/models"
)

// Fixed auth-state keys. The string "true"/"false" encoding for the two
// flags mirrors the on-device storage contract.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyIsLoggedIn   = "isLoggedIn"
	KeyIsTraveling  = "isTraveling"
)

// AuthStateStore persists the four fixed auth-state keys per user. Get
// returns an empty string for absent keys.
type AuthStateStore interface {
	Get(userID uint, key string) (string, error)
	Set(userID uint, key, value string) error
	Delete(userID uint, key string) error
}

// SessionStore holds ephemeral survey sessions. SetSurvey replaces the
// whole snapshot; it never merges. Callers must carry forward any fields
// they want retained.
type SessionStore interface {
	GetSurvey(userID uint) (*models.SurveySession, error)
	SetSurvey(userID uint, session *models.SurveySession) error
	ClearSurvey(userID uint) error
}
