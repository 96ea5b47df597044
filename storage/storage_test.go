package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tourmate.app/models"
)

// setupRedisStore creates a store backed by a mock redis server
func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mockRedis := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	store := NewRedisStoreWithClient(client, 30*time.Minute)
	return mockRedis, store
}

func authStateStores(t *testing.T) map[string]AuthStateStore {
	_, redisStore := setupRedisStore(t)
	return map[string]AuthStateStore{
		"Memory": NewMemoryAuthStateStore(),
		"Redis":  redisStore,
	}
}

func sessionStores(t *testing.T) map[string]SessionStore {
	_, redisStore := setupRedisStore(t)
	return map[string]SessionStore{
		"Memory": NewMemorySessionStore(),
		"Redis":  redisStore,
	}
}

func TestAuthStateStore_SetGetDelete(t *testing.T) {
	for name, store := range authStateStores(t) {
		t.Run(name, func(t *testing.T) {
			val, err := store.Get(1, KeyAccessToken)
			require.NoError(t, err)
			assert.Empty(t, val, "absent key should read as empty")

			require.NoError(t, store.Set(1, KeyAccessToken, "token-abc"))
			require.NoError(t, store.Set(1, KeyIsLoggedIn, "true"))

			val, err = store.Get(1, KeyAccessToken)
			require.NoError(t, err)
			assert.Equal(t, "token-abc", val)

			flag, err := store.Get(1, KeyIsLoggedIn)
			require.NoError(t, err)
			assert.Equal(t, "true", flag)

			// keys are scoped per user
			other, err := store.Get(2, KeyAccessToken)
			require.NoError(t, err)
			assert.Empty(t, other)

			require.NoError(t, store.Delete(1, KeyAccessToken))
			val, err = store.Get(1, KeyAccessToken)
			require.NoError(t, err)
			assert.Empty(t, val)
		})
	}
}

func TestAuthStateStore_OverwriteValue(t *testing.T) {
	for name, store := range authStateStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(7, KeyIsTraveling, "false"))
			require.NoError(t, store.Set(7, KeyIsTraveling, "true"))

			val, err := store.Get(7, KeyIsTraveling)
			require.NoError(t, err)
			assert.Equal(t, "true", val)
		})
	}
}

func TestSessionStore_FullReplaceSemantics(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			first := &models.SurveySession{
				LocationX:          126.9780,
				LocationY:          37.5665,
				SearchRadiusMeters: 1000,
				MoodAdjectives:     []string{"quiet", "cozy"},
				Region:             "Seoul",
				TransportationMode: models.TransportationWalking,
			}
			require.NoError(t, store.SetSurvey(1, first))

			// A partial snapshot replaces everything: omitted fields clear.
			second := &models.SurveySession{
				LocationX:          127.0276,
				LocationY:          37.4979,
				SearchRadiusMeters: 3000,
			}
			require.NoError(t, store.SetSurvey(1, second))

			got, err := store.GetSurvey(1)
			require.NoError(t, err)
			assert.Equal(t, 127.0276, got.LocationX)
			assert.Equal(t, 3000, got.SearchRadiusMeters)
			assert.Empty(t, got.Region, "omitted field must be cleared, not merged")
			assert.Empty(t, got.TransportationMode)
			assert.Empty(t, got.MoodAdjectives)
		})
	}
}

func TestSessionStore_GetAbsentReturnsEmpty(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.GetSurvey(99)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, models.SurveySession{}, *got)
		})
	}
}

func TestSessionStore_Clear(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.SetSurvey(3, &models.SurveySession{Region: "Busan"}))
			require.NoError(t, store.ClearSurvey(3))

			got, err := store.GetSurvey(3)
			require.NoError(t, err)
			assert.Empty(t, got.Region)
		})
	}
}

func TestSessionStore_AdjectiveOrderPreserved(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			session := &models.SurveySession{}
			assert.True(t, session.AddMoodAdjective("lively"))
			assert.True(t, session.AddMoodAdjective("modern"))
			assert.False(t, session.AddMoodAdjective("lively"), "duplicates rejected")
			assert.True(t, session.AddMoodAdjective("calm"))
			assert.False(t, session.AddMoodAdjective("extra"), "capped at three")

			require.NoError(t, store.SetSurvey(5, session))

			got, err := store.GetSurvey(5)
			require.NoError(t, err)
			assert.Equal(t, []string{"lively", "modern", "calm"}, got.MoodAdjectives)
		})
	}
}

func TestMemorySessionStore_SnapshotIsolation(t *testing.T) {
	store := NewMemorySessionStore()

	session := &models.SurveySession{MoodAdjectives: []string{"quiet"}}
	require.NoError(t, store.SetSurvey(1, session))

	// Mutating the caller's copy after the write must not leak into the store
	session.MoodAdjectives[0] = "loud"
	session.Region = "changed"

	got, err := store.GetSurvey(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"quiet"}, got.MoodAdjectives)
	assert.Empty(t, got.Region)
}

func TestRedisStore_SessionTTL(t *testing.T) {
	mockRedis, store := setupRedisStore(t)

	require.NoError(t, store.SetSurvey(1, &models.SurveySession{Region: "Jeju"}))

	mockRedis.FastForward(31 * time.Minute)

	got, err := store.GetSurvey(1)
	require.NoError(t, err)
	assert.Empty(t, got.Region, "session should expire after TTL")
}

func TestRedisStore_AuthStateHasNoTTL(t *testing.T) {
	mockRedis, store := setupRedisStore(t)

	require.NoError(t, store.Set(1, KeyRefreshToken, "refresh-xyz"))

	mockRedis.FastForward(24 * 14 * time.Hour)

	val, err := store.Get(1, KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh-xyz", val)
}
