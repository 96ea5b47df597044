package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"tourmate.app/models"
	"tourmate.app/repository"
)

func setupNotificationService(t *testing.T) (*NotificationService, *mockPushProvider, *gorm.DB) {
	db := setupTestDB(t)
	push := new(mockPushProvider)
	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewDeviceTokenRepository(db),
		push,
	)
	return svc, push, db
}

// kst matches the timezone the trigger times are specified in
var kst = time.FixedZone("KST", 9*60*60)

func TestNextWeekdayLunch(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "MondayMorningFiresToday",
			now:  time.Date(2026, 8, 24, 9, 0, 0, 0, kst), // Monday
			want: time.Date(2026, 8, 24, 11, 30, 0, 0, kst),
		},
		{
			name: "MondayAfternoonRollsToTuesday",
			now:  time.Date(2026, 8, 24, 12, 0, 0, 0, kst),
			want: time.Date(2026, 8, 25, 11, 30, 0, 0, kst),
		},
		{
			name: "ExactlyAtSlotRollsForward",
			now:  time.Date(2026, 8, 24, 11, 30, 0, 0, kst),
			want: time.Date(2026, 8, 25, 11, 30, 0, 0, kst),
		},
		{
			name: "FridayAfternoonSkipsToMonday",
			now:  time.Date(2026, 8, 28, 13, 0, 0, 0, kst), // Friday
			want: time.Date(2026, 8, 31, 11, 30, 0, 0, kst),
		},
		{
			name: "SaturdayMorningSkipsToMonday",
			now:  time.Date(2026, 8, 29, 9, 0, 0, 0, kst), // Saturday
			want: time.Date(2026, 8, 31, 11, 30, 0, 0, kst),
		},
		{
			name: "SundaySkipsToMonday",
			now:  time.Date(2026, 8, 30, 20, 0, 0, 0, kst),
			want: time.Date(2026, 8, 31, 11, 30, 0, 0, kst),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextWeekdayLunch(tt.now))
		})
	}
}

func TestNextWeekendTravel(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "WednesdayFiresThisFriday",
			now:  time.Date(2026, 8, 26, 10, 0, 0, 0, kst), // Wednesday
			want: time.Date(2026, 8, 28, 18, 0, 0, 0, kst),
		},
		{
			name: "FridayBeforeSixFiresToday",
			now:  time.Date(2026, 8, 28, 17, 0, 0, 0, kst),
			want: time.Date(2026, 8, 28, 18, 0, 0, 0, kst),
		},
		{
			name: "FridayEveningRollsToNextFriday",
			now:  time.Date(2026, 8, 28, 19, 0, 0, 0, kst),
			want: time.Date(2026, 9, 4, 18, 0, 0, 0, kst),
		},
		{
			name: "SaturdayRollsToNextFriday",
			now:  time.Date(2026, 8, 29, 9, 0, 0, 0, kst),
			want: time.Date(2026, 9, 4, 18, 0, 0, 0, kst),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextWeekendTravel(tt.now))
		})
	}
}

func TestNotificationService_EnsureChannels(t *testing.T) {
	svc, _, _ := setupNotificationService(t)

	require.NoError(t, svc.EnsureChannels())
	// idempotent on restart
	require.NoError(t, svc.EnsureChannels())

	channels, err := svc.ListChannels()
	require.NoError(t, err)
	assert.Len(t, channels, 4)

	names := make([]string, 0, len(channels))
	for _, channel := range channels {
		names = append(names, channel.Name)
	}
	assert.ElementsMatch(t, []string{ChannelDefault, ChannelTravel, ChannelLunch, ChannelWeekend}, names)
}

func TestNotificationService_ScheduleWeekdayLunch_Replaces(t *testing.T) {
	svc, _, _ := setupNotificationService(t)

	monday := time.Date(2026, 8, 24, 9, 0, 0, 0, kst)
	first, err := svc.ScheduleWeekdayLunch(1, monday)
	require.NoError(t, err)
	assert.Equal(t, NotifWeekdayLunch, first.NotifID)
	assert.Equal(t, time.Date(2026, 8, 24, 11, 30, 0, 0, kst), first.TriggerAt)

	// rescheduling replaces the pending entry, never duplicates it
	_, err = svc.ScheduleWeekdayLunch(1, monday.Add(4*time.Hour))
	require.NoError(t, err)

	pending, err := svc.ListPending(1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, time.Date(2026, 8, 25, 11, 30, 0, 0, kst).Unix(), pending[0].TriggerAt.Unix())
}

func TestNotificationService_SchedulePostTravel(t *testing.T) {
	svc, _, _ := setupNotificationService(t)

	now := time.Date(2026, 8, 24, 15, 0, 0, 0, kst)
	first, err := svc.SchedulePostTravel(1, "서울특별시 종로구", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(48*time.Hour).Unix(), first.TriggerAt.Unix())
	assert.Equal(t, ChannelTravel, first.Channel)

	// each trip keeps its own follow-up
	second, err := svc.SchedulePostTravel(1, "부산광역시", now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first.NotifID, second.NotifID)

	pending, err := svc.ListPending(1)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestNotificationService_Cancel(t *testing.T) {
	svc, _, _ := setupNotificationService(t)

	_, err := svc.ScheduleWeekendTravel(1, time.Date(2026, 8, 26, 10, 0, 0, 0, kst))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(1, NotifWeekendTravel))

	err = svc.Cancel(1, NotifWeekendTravel)
	assert.Error(t, err)
}

func TestNotificationService_ResolveAction(t *testing.T) {
	svc, _, _ := setupNotificationService(t)

	t.Run("DismissNavigatesNowhere", func(t *testing.T) {
		assert.Nil(t, svc.ResolveAction("dismiss", ""))
	})

	t.Run("OpenSurvey", func(t *testing.T) {
		target := svc.ResolveAction("open-survey", "")
		require.NotNil(t, target)
		assert.Equal(t, models.ScreenSurvey, target.Screen)
	})

	t.Run("ViewToursCarriesParams", func(t *testing.T) {
		target := svc.ResolveAction("view-tours", `{"category":"restaurant"}`)
		require.NotNil(t, target)
		assert.Equal(t, models.ScreenTourList, target.Screen)
		assert.Equal(t, "restaurant", target.Params["category"])
	})

	t.Run("StartTravelOpensSurvey", func(t *testing.T) {
		target := svc.ResolveAction("start_travel", "")
		require.NotNil(t, target)
		assert.Equal(t, models.ScreenSurvey, target.Screen)
	})

	t.Run("UnknownActionFallsBackToSurvey", func(t *testing.T) {
		target := svc.ResolveAction("launch-rocket", "")
		require.NotNil(t, target)
		assert.Equal(t, models.ScreenSurvey, target.Screen)
	})

	t.Run("GarbageParamsIgnored", func(t *testing.T) {
		target := svc.ResolveAction("view-tours", "{not json")
		require.NotNil(t, target)
		assert.Empty(t, target.Params)
	})
}

func TestNotificationService_DeliverDue(t *testing.T) {
	svc, push, db := setupNotificationService(t)

	require.NoError(t, svc.RegisterDevice(1, &models.DeviceTokenRequest{Token: "device-a", Platform: "android"}))
	require.NoError(t, svc.RegisterDevice(1, &models.DeviceTokenRequest{Token: "device-b", Platform: "ios"}))

	// one due, one in the future
	past := time.Now().Add(-49 * time.Hour)
	_, err := svc.SchedulePostTravel(1, "서울", past)
	require.NoError(t, err)
	_, err = svc.ScheduleWeekendTravel(1, time.Now())
	require.NoError(t, err)

	push.On("SendToDevices", mock.MatchedBy(func(tokens []string) bool { return len(tokens) == 2 }), mock.AnythingOfType("providers.PushNotification")).
		Return([]string{"device-b"}, nil).Once()

	delivered, err := svc.DeliverDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	push.AssertExpectations(t)

	// the token FCM rejected was pruned
	var tokenCount int64
	db.Model(&models.DeviceToken{}).Count(&tokenCount)
	assert.Equal(t, int64(1), tokenCount)

	pending, err := svc.ListPending(1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, NotifWeekendTravel, pending[0].NotifID)

	// delivered notifications never fire twice
	delivered, err = svc.DeliverDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestNotificationService_DeliverDue_NoDevices(t *testing.T) {
	svc, push, _ := setupNotificationService(t)

	_, err := svc.SchedulePostTravel(1, "서울", time.Now().Add(-49*time.Hour))
	require.NoError(t, err)

	// no devices registered: marked delivered without a push attempt
	delivered, err := svc.DeliverDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	push.AssertNotCalled(t, "SendToDevices", mock.Anything, mock.Anything)
}

func TestNotificationService_SendTestNotification(t *testing.T) {
	svc, push, _ := setupNotificationService(t)

	t.Run("NoDevices", func(t *testing.T) {
		err := svc.SendTestNotification(context.Background(), 1, "title", "body")
		assert.Error(t, err)
	})

	t.Run("Delivered", func(t *testing.T) {
		require.NoError(t, svc.RegisterDevice(1, &models.DeviceTokenRequest{Token: "device-a", Platform: "android"}))
		push.On("SendToDevices", []string{"device-a"}, mock.AnythingOfType("providers.PushNotification")).
			Return(nil, nil).Once()

		err := svc.SendTestNotification(context.Background(), 1, "title", "body")
		assert.NoError(t, err)
		push.AssertExpectations(t)
	})
}
