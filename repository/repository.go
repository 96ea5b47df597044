// Package repository implements data access layer for the application
package repository

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"tourmate.app/models"
)

// UserRepository handles data access operations for user accounts
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository for user data
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	log.Printf("[DEBUG] UserRepository.FindByEmail: email=%s\n", email)

	var user models.User
	result := r.db.Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Println("[DEBUG] No user found")
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding user: %v\n", result.Error)
		return nil, result.Error
	}

	return &user, nil
}

// FindByID retrieves a user by its ID
func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	log.Printf("[DEBUG] UserRepository.FindByID: id=%d\n", id)

	var user models.User
	result := r.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding user by ID: %v\n", result.Error)
		return nil, result.Error
	}

	return &user, nil
}

// FindByKakaoID retrieves a user by its Kakao account ID
func (r *UserRepository) FindByKakaoID(kakaoID string) (*models.User, error) {
	log.Printf("[DEBUG] UserRepository.FindByKakaoID: kakaoID=%s\n", kakaoID)

	var user models.User
	result := r.db.Where("kakao_id = ?", kakaoID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding user by Kakao ID: %v\n", result.Error)
		return nil, result.Error
	}

	return &user, nil
}

// Create persists a new user to the database
func (r *UserRepository) Create(user *models.User) error {
	log.Printf("[DEBUG] UserRepository.Create: email=%s\n", user.Email)

	result := r.db.Create(user)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating user: %v\n", result.Error)
		return result.Error
	}

	log.Printf("[DEBUG] Created user with ID: %d\n", user.ID)
	return nil
}

// Update modifies an existing user
func (r *UserRepository) Update(user *models.User) error {
	log.Printf("[DEBUG] UserRepository.Update: id=%d\n", user.ID)

	result := r.db.Save(user)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when updating user: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// RefreshTokenRepository handles data access operations for refresh tokens
type RefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new repository for refresh token operations
func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Save persists a refresh token for a user
func (r *RefreshTokenRepository) Save(userID uint, token string, expiresIn time.Duration) (*models.RefreshToken, error) {
	log.Printf("[DEBUG] RefreshTokenRepository.Save: userID=%d, expiresIn=%v\n", userID, expiresIn)

	refreshToken := &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(expiresIn),
	}

	result := r.db.Create(refreshToken)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when saving refresh token: %v\n", result.Error)
		return nil, result.Error
	}

	return refreshToken, nil
}

// FindByToken retrieves a refresh token by its string value
func (r *RefreshTokenRepository) FindByToken(tokenStr string) (*models.RefreshToken, error) {
	log.Println("[DEBUG] RefreshTokenRepository.FindByToken")

	var token models.RefreshToken
	result := r.db.Where("token = ?", tokenStr).First(&token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding refresh token: %v\n", result.Error)
		return nil, result.Error
	}

	return &token, nil
}

// Delete removes a refresh token from the database
func (r *RefreshTokenRepository) Delete(tokenStr string) error {
	log.Println("[DEBUG] RefreshTokenRepository.Delete")

	result := r.db.Where("token = ?", tokenStr).Delete(&models.RefreshToken{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting refresh token: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// DeleteByUserID removes all refresh tokens of a user
func (r *RefreshTokenRepository) DeleteByUserID(userID uint) error {
	log.Printf("[DEBUG] RefreshTokenRepository.DeleteByUserID: userID=%d\n", userID)

	result := r.db.Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting refresh tokens: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// DeleteExpiredTokens removes all tokens that have passed their expiry
func (r *RefreshTokenRepository) DeleteExpiredTokens() error {
	log.Println("[DEBUG] RefreshTokenRepository.DeleteExpiredTokens")

	result := r.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting expired tokens: %v\n", result.Error)
		return result.Error
	}

	log.Printf("[DEBUG] Deleted %d expired tokens\n", result.RowsAffected)
	return nil
}

// TripRepository handles data access operations for trips
type TripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates a new repository for trip data
func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create persists a new trip
func (r *TripRepository) Create(trip *models.Trip) error {
	log.Printf("[DEBUG] TripRepository.Create: userID=%d, region=%s\n", trip.UserID, trip.Region)

	result := r.db.Create(trip)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating trip: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// Update modifies an existing trip
func (r *TripRepository) Update(trip *models.Trip) error {
	log.Printf("[DEBUG] TripRepository.Update: id=%d\n", trip.ID)

	result := r.db.Save(trip)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when updating trip: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// FindActiveByUserID retrieves the user's trip that has not ended yet
func (r *TripRepository) FindActiveByUserID(userID uint) (*models.Trip, error) {
	log.Printf("[DEBUG] TripRepository.FindActiveByUserID: userID=%d\n", userID)

	var trip models.Trip
	result := r.db.Where("user_id = ? AND ended_at IS NULL", userID).
		Order("started_at DESC").First(&trip)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding active trip: %v\n", result.Error)
		return nil, result.Error
	}

	return &trip, nil
}

// FindByUserID retrieves the user's trip history, newest first
func (r *TripRepository) FindByUserID(userID uint) ([]models.Trip, error) {
	log.Printf("[DEBUG] TripRepository.FindByUserID: userID=%d\n", userID)

	var trips []models.Trip
	result := r.db.Where("user_id = ?", userID).Order("started_at DESC").Find(&trips)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing trips: %v\n", result.Error)
		return nil, result.Error
	}

	return trips, nil
}

// AddVisitedContent records a place viewed during a trip
func (r *TripRepository) AddVisitedContent(content *models.VisitedContent) error {
	log.Printf("[DEBUG] TripRepository.AddVisitedContent: tripID=%d, contentID=%s\n", content.TripID, content.ContentID)

	result := r.db.Create(content)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when adding visited content: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// GetVisitedContents retrieves the places viewed during a trip
func (r *TripRepository) GetVisitedContents(tripID uint) ([]models.VisitedContent, error) {
	log.Printf("[DEBUG] TripRepository.GetVisitedContents: tripID=%d\n", tripID)

	var contents []models.VisitedContent
	result := r.db.Where("trip_id = ?", tripID).Order("created_at ASC").Find(&contents)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when getting visited contents: %v\n", result.Error)
		return nil, result.Error
	}

	return contents, nil
}

// BookmarkRepository handles data access operations for bookmarks
type BookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository creates a new repository for bookmark data
func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// FindByUserID retrieves all bookmarks of a user, newest first
func (r *BookmarkRepository) FindByUserID(userID uint) ([]models.Bookmark, error) {
	log.Printf("[DEBUG] BookmarkRepository.FindByUserID: userID=%d\n", userID)

	var bookmarks []models.Bookmark
	result := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bookmarks)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing bookmarks: %v\n", result.Error)
		return nil, result.Error
	}

	return bookmarks, nil
}

// FindByUserAndContent retrieves a bookmark by user and content ID
func (r *BookmarkRepository) FindByUserAndContent(userID uint, contentID string) (*models.Bookmark, error) {
	log.Printf("[DEBUG] BookmarkRepository.FindByUserAndContent: userID=%d, contentID=%s\n", userID, contentID)

	var bookmark models.Bookmark
	result := r.db.Where("user_id = ? AND content_id = ?", userID, contentID).First(&bookmark)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding bookmark: %v\n", result.Error)
		return nil, result.Error
	}

	return &bookmark, nil
}

// Create persists a new bookmark
func (r *BookmarkRepository) Create(bookmark *models.Bookmark) error {
	log.Printf("[DEBUG] BookmarkRepository.Create: userID=%d, contentID=%s\n", bookmark.UserID, bookmark.ContentID)

	result := r.db.Create(bookmark)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating bookmark: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// Delete removes a bookmark owned by the user
func (r *BookmarkRepository) Delete(userID, bookmarkID uint) (int64, error) {
	log.Printf("[DEBUG] BookmarkRepository.Delete: userID=%d, bookmarkID=%d\n", userID, bookmarkID)

	result := r.db.Where("user_id = ? AND id = ?", userID, bookmarkID).Delete(&models.Bookmark{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting bookmark: %v\n", result.Error)
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeviceTokenRepository handles data access operations for push device tokens
type DeviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new repository for device tokens
func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Save registers a device token, updating the owner when it already exists
func (r *DeviceTokenRepository) Save(token *models.DeviceToken) error {
	log.Printf("[DEBUG] DeviceTokenRepository.Save: userID=%d, platform=%s\n", token.UserID, token.Platform)

	var existing models.DeviceToken
	result := r.db.Where("token = ?", token.Token).First(&existing)
	if result.Error == nil {
		existing.UserID = token.UserID
		existing.Platform = token.Platform
		return r.db.Save(&existing).Error
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Printf("[ERROR] Database error when saving device token: %v\n", result.Error)
		return result.Error
	}

	return r.db.Create(token).Error
}

// GetTokensByUserID retrieves all registered device tokens of a user
func (r *DeviceTokenRepository) GetTokensByUserID(userID uint) ([]models.DeviceToken, error) {
	log.Printf("[DEBUG] DeviceTokenRepository.GetTokensByUserID: userID=%d\n", userID)

	var tokens []models.DeviceToken
	result := r.db.Where("user_id = ?", userID).Find(&tokens)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when getting device tokens: %v\n", result.Error)
		return nil, result.Error
	}

	return tokens, nil
}

// DeleteToken removes a device token that failed delivery
func (r *DeviceTokenRepository) DeleteToken(token string) error {
	log.Println("[DEBUG] DeviceTokenRepository.DeleteToken")

	result := r.db.Where("token = ?", token).Delete(&models.DeviceToken{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting device token: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// NotificationRepository handles data access for channels and pending
// notifications
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository for notification data
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// EnsureChannel registers a notification channel if it does not exist yet
func (r *NotificationRepository) EnsureChannel(name, description string) error {
	log.Printf("[DEBUG] NotificationRepository.EnsureChannel: name=%s\n", name)

	channel := models.NotificationChannel{Name: name, Description: description}
	result := r.db.Where(models.NotificationChannel{Name: name}).FirstOrCreate(&channel)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when ensuring channel: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// ListChannels retrieves all registered notification channels
func (r *NotificationRepository) ListChannels() ([]models.NotificationChannel, error) {
	var channels []models.NotificationChannel
	result := r.db.Order("name ASC").Find(&channels)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing channels: %v\n", result.Error)
		return nil, result.Error
	}

	return channels, nil
}

// Upsert stores a pending notification. An existing row with the same
// user and notification ID is replaced so recurring categories never stack.
func (r *NotificationRepository) Upsert(notification *models.PendingNotification) error {
	log.Printf("[DEBUG] NotificationRepository.Upsert: userID=%d, notifID=%s\n", notification.UserID, notification.NotifID)

	var existing models.PendingNotification
	result := r.db.Where("user_id = ? AND notif_id = ?", notification.UserID, notification.NotifID).First(&existing)
	if result.Error == nil {
		notification.ID = existing.ID
		notification.CreatedAt = existing.CreatedAt
		return r.db.Save(notification).Error
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Printf("[ERROR] Database error when upserting notification: %v\n", result.Error)
		return result.Error
	}

	return r.db.Create(notification).Error
}

// Create stores a one-shot pending notification without deduplication
func (r *NotificationRepository) Create(notification *models.PendingNotification) error {
	log.Printf("[DEBUG] NotificationRepository.Create: userID=%d, notifID=%s\n", notification.UserID, notification.NotifID)

	result := r.db.Create(notification)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating notification: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// FindDue retrieves undelivered notifications whose trigger time has passed
func (r *NotificationRepository) FindDue(now time.Time) ([]models.PendingNotification, error) {
	var notifications []models.PendingNotification
	result := r.db.Where("delivered = ? AND trigger_at <= ?", false, now).Find(&notifications)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding due notifications: %v\n", result.Error)
		return nil, result.Error
	}

	return notifications, nil
}

// FindPendingByUser retrieves the user's undelivered notifications
func (r *NotificationRepository) FindPendingByUser(userID uint) ([]models.PendingNotification, error) {
	log.Printf("[DEBUG] NotificationRepository.FindPendingByUser: userID=%d\n", userID)

	var notifications []models.PendingNotification
	result := r.db.Where("user_id = ? AND delivered = ?", userID, false).
		Order("trigger_at ASC").Find(&notifications)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing pending notifications: %v\n", result.Error)
		return nil, result.Error
	}

	return notifications, nil
}

// MarkDelivered flags a notification as delivered
func (r *NotificationRepository) MarkDelivered(id uint) error {
	result := r.db.Model(&models.PendingNotification{}).Where("id = ?", id).Update("delivered", true)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when marking notification delivered: %v\n", result.Error)
		return result.Error
	}

	return nil
}

// Cancel removes a pending notification owned by the user
func (r *NotificationRepository) Cancel(userID uint, notifID string) (int64, error) {
	log.Printf("[DEBUG] NotificationRepository.Cancel: userID=%d, notifID=%s\n", userID, notifID)

	result := r.db.Where("user_id = ? AND notif_id = ? AND delivered = ?", userID, notifID, false).
		Delete(&models.PendingNotification{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when cancelling notification: %v\n", result.Error)
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteDeliveredBefore prunes delivered notifications older than the cutoff
func (r *NotificationRepository) DeleteDeliveredBefore(cutoff time.Time) error {
	result := r.db.Where("delivered = ? AND trigger_at < ?", true, cutoff).
		Delete(&models.PendingNotification{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when pruning delivered notifications: %v\n", result.Error)
		return result.Error
	}

	log.Printf("[DEBUG] Pruned %d delivered notifications\n", result.RowsAffected)
	return nil
}
