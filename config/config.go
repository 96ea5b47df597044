package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"tourmate.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server     ServerConfig    `split_words:"true"`
	Database   DatabaseConfig  `split_words:"true"`
	Redis      RedisConfig     `split_words:"true"`
	JWT        JWTConfig       `split_words:"true"`
	Kakao      KakaoConfig     `split_words:"true"`
	TourAPI    TourAPIConfig   `split_words:"true"`
	Push       PushConfig      `split_words:"true"`
	Scheduler  SchedulerConfig `split_words:"true"`
	AppBaseURL string          `envconfig:"APP_URL" default:"http://localhost:8080"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"tourmate"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted database connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig contains settings for the session and auth-state stores.
// When disabled the application falls back to in-memory stores.
type RedisConfig struct {
	Enabled    bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Addr       string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password   string `envconfig:"REDIS_PASSWORD" default:""`
	DB         int    `envconfig:"REDIS_DB" default:"0"`
	SessionTTL int    `envconfig:"REDIS_SESSION_TTL_MINUTES" default:"720"`
}

// JWTConfig contains token signing settings
type JWTConfig struct {
	Secret             string `envconfig:"JWT_SECRET" required:"true"`
	AccessExpiryHours  int    `envconfig:"JWT_ACCESS_EXPIRY_HOURS" default:"1"`
	RefreshExpiryHours int    `envconfig:"JWT_REFRESH_EXPIRY_HOURS" default:"336"`
}

// AccessExpiry returns the access token lifetime
func (j JWTConfig) AccessExpiry() time.Duration {
	return time.Duration(j.AccessExpiryHours) * time.Hour
}

// RefreshExpiry returns the refresh token lifetime
func (j JWTConfig) RefreshExpiry() time.Duration {
	return time.Duration(j.RefreshExpiryHours) * time.Hour
}

// KakaoConfig contains settings for Kakao OAuth and the Kakao Local API
type KakaoConfig struct {
	ClientID     string `envconfig:"KAKAO_CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"KAKAO_CLIENT_SECRET" default:""`
	RedirectURI  string `envconfig:"KAKAO_REDIRECT_URI" required:"true"`
	AuthBaseURL  string `envconfig:"KAKAO_AUTH_BASE_URL" default:"https://kauth.kakao.com"`
	APIBaseURL   string `envconfig:"KAKAO_API_BASE_URL" default:"https://kapi.kakao.com"`
	LocalBaseURL string `envconfig:"KAKAO_LOCAL_BASE_URL" default:"https://dapi.kakao.com"`
	RESTAPIKey   string `envconfig:"KAKAO_REST_API_KEY" required:"true"`
}

// TourAPIConfig contains settings for the tour recommendation API
type TourAPIConfig struct {
	APIKey          string `envconfig:"TOUR_API_KEY" required:"true"`
	BaseURL         string `envconfig:"TOUR_API_BASE_URL" default:"https://apis.data.go.kr/B551011/KorService1"`
	CacheTTLMinutes int    `envconfig:"TOUR_CACHE_TTL_MINUTES" default:"10"`
	LogFile         string `envconfig:"TOUR_API_LOG_FILE" default:""`
}

// CacheTTL returns the tour response cache lifetime
func (t TourAPIConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLMinutes) * time.Minute
}

// PushConfig contains Firebase Cloud Messaging settings. An empty
// credentials file disables push delivery.
type PushConfig struct {
	CredentialsFile string `envconfig:"FCM_CREDENTIALS_FILE" default:""`
}

// SchedulerConfig contains settings for the background delivery scheduler
type SchedulerConfig struct {
	DeliveryInterval int `envconfig:"DELIVERY_INTERVAL_MINUTES" default:"1"`
	CleanupInterval  int `envconfig:"CLEANUP_INTERVAL_MINUTES" default:"1440"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.JWT.Validate(); err != nil {
		return err
	}
	if err := c.Kakao.Validate(); err != nil {
		return err
	}
	if err := c.TourAPI.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.validateAppBaseURL(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAppBaseURL() error {
	if c.AppBaseURL == "" {
		return errors.NewConfigurationError("APP_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(c.AppBaseURL, "http://") && !strings.HasPrefix(c.AppBaseURL, "https://") {
		return errors.NewConfigurationError("APP_URL must start with http:// or https://", nil)
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// ValidateSSLMode validates the SSL mode configuration
func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > 65535 {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	if err := d.ValidateSSLMode(); err != nil {
		return err
	}
	return nil
}

// Validate checks JWT configuration
func (j *JWTConfig) Validate() error {
	if j.Secret == "" {
		return errors.NewConfigurationError("JWT_SECRET is required", nil)
	}
	if len(j.Secret) < 16 {
		return errors.NewConfigurationError("JWT_SECRET must be at least 16 characters", nil)
	}
	if j.AccessExpiryHours < 1 {
		return errors.NewConfigurationError("JWT_ACCESS_EXPIRY_HOURS must be at least 1", nil)
	}
	if j.RefreshExpiryHours <= j.AccessExpiryHours {
		return errors.NewConfigurationError("JWT_REFRESH_EXPIRY_HOURS must exceed JWT_ACCESS_EXPIRY_HOURS", nil)
	}
	return nil
}

// Validate checks Kakao configuration
func (k *KakaoConfig) Validate() error {
	if k.ClientID == "" {
		return errors.NewConfigurationError("KAKAO_CLIENT_ID is required", nil)
	}
	if k.RESTAPIKey == "" {
		return errors.NewConfigurationError("KAKAO_REST_API_KEY is required", nil)
	}
	if k.RedirectURI == "" {
		return errors.NewConfigurationError("KAKAO_REDIRECT_URI is required", nil)
	}
	for _, u := range []string{k.AuthBaseURL, k.APIBaseURL, k.LocalBaseURL} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return errors.NewConfigurationError("Kakao base URLs must start with http:// or https://", nil)
		}
	}
	return nil
}

// Validate checks tour API configuration
func (t *TourAPIConfig) Validate() error {
	if t.APIKey == "" {
		return errors.NewConfigurationError("TOUR_API_KEY is required", nil)
	}
	if t.BaseURL == "" {
		return errors.NewConfigurationError("TOUR_API_BASE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(t.BaseURL, "http://") && !strings.HasPrefix(t.BaseURL, "https://") {
		return errors.NewConfigurationError("TOUR_API_BASE_URL must start with http:// or https://", nil)
	}
	if t.CacheTTLMinutes < 1 {
		return errors.NewConfigurationError("TOUR_CACHE_TTL_MINUTES must be at least 1", nil)
	}
	return nil
}

// Validate checks scheduler configuration
func (s *SchedulerConfig) Validate() error {
	if s.DeliveryInterval < 1 {
		return errors.NewConfigurationError("DELIVERY_INTERVAL_MINUTES must be at least 1 minute", nil)
	}
	if s.DeliveryInterval > 60 {
		return errors.NewConfigurationError("DELIVERY_INTERVAL_MINUTES cannot exceed 60 minutes", nil)
	}
	if s.CleanupInterval < 1 {
		return errors.NewConfigurationError("CLEANUP_INTERVAL_MINUTES must be at least 1 minute", nil)
	}
	if s.CleanupInterval > 10080 {
		return errors.NewConfigurationError("CLEANUP_INTERVAL_MINUTES cannot exceed 10080 minutes (7 days)", nil)
	}
	return nil
}
