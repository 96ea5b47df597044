package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"tourmate.app/config"
	"tourmate.app/models"
	"tourmate.app/providers"
	"tourmate.app/repository"
	"tourmate.app/service"
)

// fakePushProvider records sends without touching FCM
type fakePushProvider struct {
	sent int
}

func (f *fakePushProvider) SendToDevice(_ context.Context, _ string, _ providers.PushNotification) error {
	f.sent++
	return nil
}

func (f *fakePushProvider) SendToDevices(_ context.Context, tokens []string, _ providers.PushNotification) ([]string, error) {
	f.sent += len(tokens)
	return nil, nil
}

type schedulerFixture struct {
	scheduler *Scheduler
	push      *fakePushProvider
	notifRepo *repository.NotificationRepository
	tokenRepo *repository.RefreshTokenRepository
	db        *gorm.DB
}

func setupScheduler(t *testing.T) *schedulerFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.DeviceToken{},
		&models.NotificationChannel{},
		&models.PendingNotification{},
	))

	push := &fakePushProvider{}
	notifRepo := repository.NewNotificationRepository(db)
	deviceRepo := repository.NewDeviceTokenRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	notifications := service.NewNotificationService(notifRepo, deviceRepo, push)

	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{DeliveryInterval: 1, CleanupInterval: 1440},
	}

	sched := NewScheduler(cfg, notifications, tokenRepo)
	return &schedulerFixture{scheduler: sched, push: push, notifRepo: notifRepo, tokenRepo: tokenRepo, db: db}
}

func TestScheduler_DeliverDueNotifications(t *testing.T) {
	f := setupScheduler(t)

	require.NoError(t, f.db.Create(&models.DeviceToken{UserID: 1, Token: "device-a", Platform: "android"}).Error)
	require.NoError(t, f.notifRepo.Create(&models.PendingNotification{
		UserID:    1,
		NotifID:   "post-travel-x",
		Channel:   "travel",
		TriggerAt: time.Now().Add(-time.Minute),
	}))

	f.scheduler.deliverDueNotifications()

	assert.Equal(t, 1, f.push.sent)

	due, err := f.notifRepo.FindDue(time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestScheduler_Cleanup(t *testing.T) {
	f := setupScheduler(t)

	require.NoError(t, f.db.Create(&models.RefreshToken{
		Token:     "expired",
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, f.notifRepo.Create(&models.PendingNotification{
		UserID:    1,
		NotifID:   "old-delivered",
		TriggerAt: time.Now().Add(-14 * 24 * time.Hour),
		Delivered: true,
	}))

	f.scheduler.cleanup()

	token, err := f.tokenRepo.FindByToken("expired")
	require.NoError(t, err)
	assert.Nil(t, token)

	var count int64
	f.db.Model(&models.PendingNotification{}).Count(&count)
	assert.Zero(t, count)
}

func TestScheduler_StartAndStop(t *testing.T) {
	f := setupScheduler(t)

	require.NoError(t, f.notifRepo.Create(&models.PendingNotification{
		UserID:    1,
		NotifID:   "due-now",
		TriggerAt: time.Now().Add(-time.Minute),
	}))

	f.scheduler.Start()
	// loops run their first pass immediately
	time.Sleep(100 * time.Millisecond)
	f.scheduler.Stop()

	due, err := f.notifRepo.FindDue(time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}
