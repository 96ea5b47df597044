// Package models defines data structures used throughout the application
package models

import (
	"time"

	"gorm.io/gorm"
)

// Transportation modes and their fixed search radius tiers in meters
const (
	TransportationWalking = "walking"
	TransportationTransit = "transit"
	TransportationCar     = "car"
)

// MaxMoodAdjectives limits the number of free-form preference tags per survey
const MaxMoodAdjectives = 3

// SearchRadiusForMode returns the fixed search radius tier for a
// transportation mode. Unknown modes fall back to the walking tier.
func SearchRadiusForMode(mode string) int {
	switch mode {
	case TransportationCar:
		return 3000
	case TransportationTransit:
		return 2000
	default:
		return 1000
	}
}

// SurveySession holds a user's in-progress trip preferences. Sessions are
// ephemeral: they live in the session store with a TTL and are never
// written to the relational database.
type SurveySession struct {
	LocationX             float64  `json:"mapX"`
	LocationY             float64  `json:"mapY"`
	SearchRadiusMeters    int      `json:"radius"`
	MoodAdjectives        []string `json:"adjectives"`
	Region                string   `json:"region,omitempty"`
	TransportationMode    string   `json:"transportation,omitempty"`
	CompanionType         string   `json:"companion,omitempty"`
	AutoRecommendCategory string   `json:"autoRecommendCategory,omitempty"`
}

// AddMoodAdjective appends a preference tag preserving insertion order.
// Duplicates are rejected, and at most MaxMoodAdjectives tags are kept.
func (s *SurveySession) AddMoodAdjective(adjective string) bool {
	if adjective == "" || len(s.MoodAdjectives) >= MaxMoodAdjectives {
		return false
	}
	for _, existing := range s.MoodAdjectives {
		if existing == adjective {
			return false
		}
	}
	s.MoodAdjectives = append(s.MoodAdjectives, adjective)
	return true
}

// User represents a registered account
type User struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Email               string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash        string         `json:"-"`
	Nickname            string         `json:"nickname"`
	Provider            string         `json:"provider" gorm:"not null;default:email"` // "email" or "kakao"
	KakaoID             string         `json:"-" gorm:"index"`
	BirthYear           int            `json:"birth_year"`
	Gender              string         `json:"gender"`
	HasCompletedProfile bool           `json:"has_completed_profile" gorm:"default:false"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

// RefreshToken represents a persisted refresh token for a user session
type RefreshToken struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Token     string         `json:"token" gorm:"uniqueIndex;not null"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Trip represents a persisted travel session
type Trip struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Region    string         `json:"region"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// VisitedContent records a place viewed during a trip
type VisitedContent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TripID    uint      `json:"trip_id" gorm:"index;not null"`
	Trip      Trip      `json:"-" gorm:"foreignKey:TripID"`
	ContentID string    `json:"content_id" gorm:"not null"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark represents a user-saved place, independent of trip history
type Bookmark struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	ContentID string         `json:"content_id" gorm:"not null"`
	Title     string         `json:"title"`
	Category  string         `json:"category"`
	Address   string         `json:"address"`
	ImageURL  string         `json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// DeviceToken represents a registered push notification device
type DeviceToken struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Token     string         `json:"token" gorm:"uniqueIndex;not null"`
	Platform  string         `json:"platform"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// NotificationChannel represents an OS-level notification channel.
// All four fixed channels must exist before a notification using them is
// displayed.
type NotificationChannel struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// PendingNotification represents a scheduled trigger notification. The
// payload is fully self-describing: delivery runs outside request scope and
// must resolve navigation purely from the stored fields.
type PendingNotification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	NotifID     string    `json:"notif_id" gorm:"index:idx_user_notif,unique;not null"`
	UserID      uint      `json:"user_id" gorm:"index:idx_user_notif,unique;not null"`
	Channel     string    `json:"channel"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Screen      string    `json:"screen"`
	ParamsJSON  string    `json:"params"`
	ActionsJSON string    `json:"actions"`
	TriggerAt   time.Time `json:"trigger_at" gorm:"index"`
	Delivered   bool      `json:"delivered" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NavigationTarget is the deep-link destination resolved from a
// notification action press
type NavigationTarget struct {
	Screen string            `json:"screen"`
	Params map[string]string `json:"params,omitempty"`
}

// Screens the client can be told to restore or navigate to
const (
	ScreenLanding    = "landing"
	ScreenMain       = "main"
	ScreenTravel     = "travel"
	ScreenSurvey     = "survey"
	ScreenTourList   = "tour-list"
	ScreenTourDetail = "tour-detail"
)

// BootstrapResult tells the client which screen to restore on launch
type BootstrapResult struct {
	Screen string `json:"screen"`
	User   *User  `json:"user,omitempty"`
}

// TourItem represents a recommended place returned from the tour API
type TourItem struct {
	ContentID string  `json:"content_id"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Address   string  `json:"address"`
	ImageURL  string  `json:"image_url"`
	MapX      float64 `json:"mapX"`
	MapY      float64 `json:"mapY"`
	Distance  float64 `json:"distance"`
}

// TourDetail represents the full description of a single place
type TourDetail struct {
	TourItem
	Overview string `json:"overview"`
	Tel      string `json:"tel"`
	Homepage string `json:"homepage"`
}

// TourQuery carries the parameters of a recommendation request
type TourQuery struct {
	MapX         float64
	MapY         float64
	RadiusMeters int
	Adjectives   []string
}

// LoginRequest represents email/password login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents data required to create an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Nickname string `json:"nickname" binding:"required"`
}

// KakaoSignInRequest carries the OAuth authorization code from the client
type KakaoSignInRequest struct {
	Code string `json:"code" binding:"required"`
}

// RefreshRequest carries a refresh token for rotation
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ProfileInfoRequest completes a user profile after first sign-in
type ProfileInfoRequest struct {
	Nickname  string `json:"nickname" binding:"required"`
	BirthYear int    `json:"birth_year" binding:"required"`
	Gender    string `json:"gender" binding:"required,oneof=male female other"`
}

// TokenResponse is returned from login, register and OAuth exchange
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// BookmarkRequest represents data required to save a place
type BookmarkRequest struct {
	ContentID string `json:"content_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Category  string `json:"category" binding:"omitempty,tourcategory"`
	Address   string `json:"address"`
	ImageURL  string `json:"image_url"`
}

// StartTripRequest begins a travel session
type StartTripRequest struct {
	Region string `json:"region" binding:"required"`
}

// DeviceTokenRequest registers a push device
type DeviceTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=ios android web"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
