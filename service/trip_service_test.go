package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "tourmate.app/errors"
	"tourmate.app/models"
	"tourmate.app/repository"
	"tourmate.app/storage"
)

type tripFixture struct {
	service       *TripService
	authState     storage.AuthStateStore
	notifications *NotificationService
	tripRepo      *repository.TripRepository
}

func setupTripService(t *testing.T) *tripFixture {
	db := setupTestDB(t)
	authState := storage.NewMemoryAuthStateStore()
	tripRepo := repository.NewTripRepository(db)
	notifications := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewDeviceTokenRepository(db),
		new(mockPushProvider),
	)

	svc := NewTripService(tripRepo, authState, notifications)
	return &tripFixture{service: svc, authState: authState, notifications: notifications, tripRepo: tripRepo}
}

func TestTripService_StartTrip(t *testing.T) {
	f := setupTripService(t)

	trip, err := f.service.StartTrip(1, &models.StartTripRequest{Region: "서울특별시 종로구"})
	require.NoError(t, err)
	assert.NotZero(t, trip.ID)
	assert.Nil(t, trip.EndedAt)

	traveling, _ := f.authState.Get(1, storage.KeyIsTraveling)
	assert.Equal(t, "true", traveling)

	t.Run("SecondTripRejected", func(t *testing.T) {
		_, err := f.service.StartTrip(1, &models.StartTripRequest{Region: "부산광역시"})
		assert.Error(t, err)
		requireErrorType(t, err, apperrors.AlreadyExistsError)
	})

	t.Run("OtherUserUnaffected", func(t *testing.T) {
		_, err := f.service.StartTrip(2, &models.StartTripRequest{Region: "부산광역시"})
		assert.NoError(t, err)
	})
}

func TestTripService_EndTrip(t *testing.T) {
	f := setupTripService(t)

	t.Run("NoActiveTrip", func(t *testing.T) {
		_, err := f.service.EndTrip(1)
		assert.Error(t, err)
		requireErrorType(t, err, apperrors.NotFoundError)
	})

	t.Run("EndsAndSchedulesFollowUp", func(t *testing.T) {
		_, err := f.service.StartTrip(1, &models.StartTripRequest{Region: "서울특별시 종로구"})
		require.NoError(t, err)

		ended, err := f.service.EndTrip(1)
		require.NoError(t, err)
		require.NotNil(t, ended.EndedAt)

		traveling, _ := f.authState.Get(1, storage.KeyIsTraveling)
		assert.Equal(t, "false", traveling)

		// post-travel follow-up is queued 48h out
		pending, err := f.notifications.ListPending(1)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, ChannelTravel, pending[0].Channel)
		assert.InDelta(t, float64(ended.EndedAt.Add(postTravelDelay).Unix()), float64(pending[0].TriggerAt.Unix()), 1)
	})

	t.Run("EndingTwiceRejected", func(t *testing.T) {
		_, err := f.service.EndTrip(1)
		assert.Error(t, err)
	})
}

func TestTripService_ListTripsAndVisits(t *testing.T) {
	f := setupTripService(t)

	_, err := f.service.StartTrip(1, &models.StartTripRequest{Region: "서울"})
	require.NoError(t, err)
	ended, err := f.service.EndTrip(1)
	require.NoError(t, err)

	require.NoError(t, f.tripRepo.AddVisitedContent(&models.VisitedContent{
		TripID:    ended.ID,
		ContentID: "125266",
		Title:     "경복궁",
	}))

	t.Run("ListTrips", func(t *testing.T) {
		trips, err := f.service.ListTrips(1)
		require.NoError(t, err)
		assert.Len(t, trips, 1)
	})

	t.Run("VisitedContents", func(t *testing.T) {
		visits, err := f.service.VisitedContents(1, ended.ID)
		require.NoError(t, err)
		require.Len(t, visits, 1)
		assert.Equal(t, "경복궁", visits[0].Title)
	})

	t.Run("ForeignTripRejected", func(t *testing.T) {
		_, err := f.service.VisitedContents(2, ended.ID)
		assert.Error(t, err)
		requireErrorType(t, err, apperrors.NotFoundError)
	})
}

func TestTripService_StartTrip_CorrectsDroppedFlagWrite(t *testing.T) {
	db := setupTestDB(t)
	flaky := &flakyAuthStateStore{inner: storage.NewMemoryAuthStateStore()}
	notifications := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewDeviceTokenRepository(db),
		new(mockPushProvider),
	)
	svc := NewTripService(repository.NewTripRepository(db), flaky, notifications)

	flaky.dropSets = 1
	_, err := svc.StartTrip(1, &models.StartTripRequest{Region: "서울특별시 종로구"})
	require.NoError(t, err)

	traveling, err := flaky.Get(1, storage.KeyIsTraveling)
	require.NoError(t, err)
	assert.Equal(t, "true", traveling)
	// dropped write followed by exactly one corrective rewrite
	assert.Equal(t, 2, flaky.setCalls)
}
