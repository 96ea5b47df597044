package service

import (
	"context"
	"time"

	"tourmate.app/models"
	"tourmate.app/providers"
)

// TourProviderInterface is an alias to the providers interface
type TourProviderInterface = providers.TourProvider

// RegionProviderInterface is an alias to the providers interface
type RegionProviderInterface = providers.RegionProvider

// OAuthProviderInterface is an alias to the providers interface
type OAuthProviderInterface = providers.OAuthProvider

// PushProviderInterface is an alias to the providers interface
type PushProviderInterface = providers.PushProvider

// AuthServiceInterface defines the interface for account and token operations
type AuthServiceInterface interface {
	Register(req *models.RegisterRequest) (*models.TokenResponse, error)
	Login(req *models.LoginRequest) (*models.TokenResponse, error)
	KakaoSignIn(ctx context.Context, req *models.KakaoSignInRequest) (*models.TokenResponse, error)
	Refresh(req *models.RefreshRequest) (*models.TokenResponse, error)
	Logout(userID uint, refreshToken string)
	Bootstrap(userID uint) (*models.BootstrapResult, error)
	ValidateToken(tokenStr string) (uint, error)
	GetUser(userID uint) (*models.User, error)
	CompleteProfile(userID uint, req *models.ProfileInfoRequest) (*models.User, error)
}

// SurveyServiceInterface defines the interface for survey session operations
type SurveyServiceInterface interface {
	GetSurvey(userID uint) (*models.SurveySession, error)
	SetSurvey(userID uint, session *models.SurveySession) (*models.SurveySession, error)
	ClearSurvey(userID uint) error
	AddMoodAdjective(userID uint, adjective string) (*models.SurveySession, error)
	ConsumeAutoRecommendCategory(userID uint) (string, error)
}

// TourServiceInterface defines the interface for tour lookups
type TourServiceInterface interface {
	GetRecommendations(userID uint, category string, override *models.TourQuery) ([]models.TourItem, error)
	GetDetail(userID uint, contentID string) (*models.TourDetail, error)
	FindRegion(lat, lon float64) (string, error)
}

// BookmarkServiceInterface defines the interface for bookmark operations
type BookmarkServiceInterface interface {
	List(userID uint) ([]models.Bookmark, error)
	Add(userID uint, req *models.BookmarkRequest) (*models.Bookmark, error)
	Remove(userID, bookmarkID uint) error
}

// TripServiceInterface defines the interface for trip lifecycle operations
type TripServiceInterface interface {
	StartTrip(userID uint, req *models.StartTripRequest) (*models.Trip, error)
	EndTrip(userID uint) (*models.Trip, error)
	ListTrips(userID uint) ([]models.Trip, error)
	VisitedContents(userID, tripID uint) ([]models.VisitedContent, error)
}

// NotificationServiceInterface defines the interface for scheduling and
// delivering notifications
type NotificationServiceInterface interface {
	EnsureChannels() error
	ListChannels() ([]models.NotificationChannel, error)
	ScheduleWeekdayLunch(userID uint, now time.Time) (*models.PendingNotification, error)
	ScheduleWeekendTravel(userID uint, now time.Time) (*models.PendingNotification, error)
	SchedulePostTravel(userID uint, region string, now time.Time) (*models.PendingNotification, error)
	Cancel(userID uint, notifID string) error
	ListPending(userID uint) ([]models.PendingNotification, error)
	ResolveAction(action, paramsJSON string) *models.NavigationTarget
	RegisterDevice(userID uint, req *models.DeviceTokenRequest) error
	SendTestNotification(ctx context.Context, userID uint, title, body string) error
	DeliverDue(ctx context.Context, now time.Time) (int, error)
	PruneDelivered(cutoff time.Time) error
}

// UserRepositoryInterface defines the interface for user data operations
type UserRepositoryInterface interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	FindByKakaoID(kakaoID string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
}

// RefreshTokenRepositoryInterface defines the interface for refresh token operations
type RefreshTokenRepositoryInterface interface {
	Save(userID uint, token string, expiresIn time.Duration) (*models.RefreshToken, error)
	FindByToken(tokenStr string) (*models.RefreshToken, error)
	Delete(tokenStr string) error
	DeleteByUserID(userID uint) error
	DeleteExpiredTokens() error
}

// TripRepositoryInterface defines the interface for trip data operations
type TripRepositoryInterface interface {
	Create(trip *models.Trip) error
	Update(trip *models.Trip) error
	FindActiveByUserID(userID uint) (*models.Trip, error)
	FindByUserID(userID uint) ([]models.Trip, error)
	AddVisitedContent(content *models.VisitedContent) error
	GetVisitedContents(tripID uint) ([]models.VisitedContent, error)
}

// BookmarkRepositoryInterface defines the interface for bookmark data operations
type BookmarkRepositoryInterface interface {
	FindByUserID(userID uint) ([]models.Bookmark, error)
	FindByUserAndContent(userID uint, contentID string) (*models.Bookmark, error)
	Create(bookmark *models.Bookmark) error
	Delete(userID, bookmarkID uint) (int64, error)
}

// DeviceTokenRepositoryInterface defines the interface for device token operations
type DeviceTokenRepositoryInterface interface {
	Save(token *models.DeviceToken) error
	GetTokensByUserID(userID uint) ([]models.DeviceToken, error)
	DeleteToken(token string) error
}

// NotificationRepositoryInterface defines the interface for notification data operations
type NotificationRepositoryInterface interface {
	EnsureChannel(name, description string) error
	ListChannels() ([]models.NotificationChannel, error)
	Upsert(notification *models.PendingNotification) error
	Create(notification *models.PendingNotification) error
	FindDue(now time.Time) ([]models.PendingNotification, error)
	FindPendingByUser(userID uint) ([]models.PendingNotification, error)
	MarkDelivered(id uint) error
	Cancel(userID uint, notifID string) (int64, error)
	DeleteDeliveredBefore(cutoff time.Time) error
}

// Ensure implementations satisfy interfaces
var _ AuthServiceInterface = (*AuthService)(nil)
var _ SurveyServiceInterface = (*SurveyService)(nil)
var _ TourServiceInterface = (*TourService)(nil)
var _ BookmarkServiceInterface = (*BookmarkService)(nil)
var _ TripServiceInterface = (*TripService)(nil)
var _ NotificationServiceInterface = (*NotificationService)(nil)
