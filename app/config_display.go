package app

import (
	"log"
	"os"
	"sort"
	"strings"

	"tourmate.app/config"
)

// ConfigDisplayer handles configuration and environment variable display
type ConfigDisplayer struct{}

// NewConfigDisplayer creates a new configuration displayer
func NewConfigDisplayer() *ConfigDisplayer {
	return &ConfigDisplayer{}
}

// PrintConfig prints all fields in the configuration
func (cd *ConfigDisplayer) PrintConfig(cfg *config.Config) {
	log.Println("==== APPLICATION CONFIGURATION ====")

	log.Printf("SERVER:\n")
	log.Printf("  Port: %d\n", cfg.Server.Port)

	log.Printf("\nDATABASE:\n")
	log.Printf("  Host: %s\n", cfg.Database.Host)
	log.Printf("  Port: %d\n", cfg.Database.Port)
	log.Printf("  User: %s\n", cfg.Database.User)
	log.Printf("  Password: %s\n", cd.maskString(cfg.Database.Password))
	log.Printf("  Name: %s\n", cfg.Database.Name)
	log.Printf("  SSLMode: %s\n", cfg.Database.SSLMode)

	log.Printf("\nREDIS:\n")
	log.Printf("  Enabled: %t\n", cfg.Redis.Enabled)
	log.Printf("  Addr: %s\n", cfg.Redis.Addr)
	log.Printf("  Session TTL: %d minutes\n", cfg.Redis.SessionTTL)

	log.Printf("\nJWT:\n")
	log.Printf("  Secret: %s\n", cd.maskString(cfg.JWT.Secret))
	log.Printf("  Access Expiry: %d hours\n", cfg.JWT.AccessExpiryHours)
	log.Printf("  Refresh Expiry: %d hours\n", cfg.JWT.RefreshExpiryHours)

	log.Printf("\nKAKAO:\n")
	log.Printf("  Client ID: %s\n", cd.maskString(cfg.Kakao.ClientID))
	log.Printf("  REST API Key: %s\n", cd.maskString(cfg.Kakao.RESTAPIKey))
	log.Printf("  Redirect URI: %s\n", cfg.Kakao.RedirectURI)

	log.Printf("\nTOUR API:\n")
	log.Printf("  API Key: %s\n", cd.maskString(cfg.TourAPI.APIKey))
	log.Printf("  Base URL: %s\n", cfg.TourAPI.BaseURL)
	log.Printf("  Cache TTL: %d minutes\n", cfg.TourAPI.CacheTTLMinutes)

	log.Printf("\nPUSH:\n")
	log.Printf("  FCM Credentials: %s\n", cfg.Push.CredentialsFile)

	log.Printf("\nSCHEDULER:\n")
	log.Printf("  Delivery Interval: %d minutes\n", cfg.Scheduler.DeliveryInterval)
	log.Printf("  Cleanup Interval: %d minutes\n", cfg.Scheduler.CleanupInterval)

	log.Printf("\nAPP BASE URL: %s\n", cfg.AppBaseURL)

	log.Println("===================================")
}

// PrintAllEnvVars prints all environment variables available to the application
func (cd *ConfigDisplayer) PrintAllEnvVars() {
	log.Println("==== ENVIRONMENT VARIABLES ====")

	envVars := os.Environ()
	sort.Strings(envVars)

	for _, envVar := range envVars {
		parts := strings.SplitN(envVar, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name, value := parts[0], parts[1]
		if cd.isSensitive(name) {
			value = cd.maskString(value)
		}
		log.Printf("  %s=%s\n", name, value)
	}

	log.Println("===============================")
}

func (cd *ConfigDisplayer) isSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range []string{"SECRET", "PASSWORD", "KEY", "TOKEN", "CREDENTIAL"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func (cd *ConfigDisplayer) maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
