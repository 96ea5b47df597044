package providers

import (
	"context"
	"time"

	"tourmate.app/models"
	"tourmate.app/providers/cache"
)

// TourProvider defines the interface for tour recommendation upstreams
type TourProvider interface {
	GetTours(category string, query *models.TourQuery) ([]models.TourItem, error)
	GetTourDetail(contentID string) (*models.TourDetail, error)
}

// RegionProvider resolves an administrative region name for coordinates
type RegionProvider interface {
	FindRegion(lat, lon float64) (string, error)
}

// KakaoProfile is the subset of the Kakao account used for sign-in
type KakaoProfile struct {
	ID       string
	Email    string
	Nickname string
}

// OAuthProvider exchanges an authorization code for a user profile
type OAuthProvider interface {
	ExchangeCode(ctx context.Context, code string) (*KakaoProfile, error)
}

// PushNotification contains the data to send in a push message
type PushNotification struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushProvider defines the interface for push notification delivery.
// SendToDevices returns the device tokens that failed so callers can prune
// them.
type PushProvider interface {
	SendToDevice(ctx context.Context, token string, notification PushNotification) error
	SendToDevices(ctx context.Context, tokens []string, notification PushNotification) ([]string, error)
}

// CacheInterface is an alias to avoid circular imports
type CacheInterface = cache.CacheInterface

// FileLogger defines the interface for file logging operations
type FileLogger interface {
	LogRequest(providerName, category string)
	LogResponse(providerName, category string, count int, duration time.Duration)
	LogError(providerName, category string, err error, duration time.Duration)
}
