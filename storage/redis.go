package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"tourmate.app/models"
)

// RedisStoreConfig contains connection settings for the redis-backed stores
type RedisStoreConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

// RedisStore implements both AuthStateStore and SessionStore on a shared
// redis client. Auth-state keys have no TTL; survey sessions expire so each
// session starts fresh.
type RedisStore struct {
	client     *redis.Client
	ctx        context.Context
	sessionTTL time.Duration
}

func NewRedisStore(config *RedisStoreConfig) (*RedisStore, error) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	slog.Info("Redis store connected successfully", "addr", config.Addr)

	return &RedisStore{
		client:     client,
		ctx:        ctx,
		sessionTTL: config.SessionTTL,
	}, nil
}

// NewRedisStoreWithClient wraps an existing client, used by tests
func NewRedisStoreWithClient(client *redis.Client, sessionTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:     client,
		ctx:        context.Background(),
		sessionTTL: sessionTTL,
	}
}

func (r *RedisStore) authKey(userID uint, key string) string {
	return fmt.Sprintf("auth:%d:%s", userID, key)
}

func (r *RedisStore) surveyKey(userID uint) string {
	return fmt.Sprintf("survey:%d", userID)
}

func (r *RedisStore) Get(userID uint, key string) (string, error) {
	val, err := r.client.Get(r.ctx, r.authKey(userID, key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		slog.Error("Redis get error", "error", err, "key", key)
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Set(userID uint, key, value string) error {
	if err := r.client.Set(r.ctx, r.authKey(userID, key), value, 0).Err(); err != nil {
		slog.Error("Redis set error", "error", err, "key", key)
		return err
	}
	return nil
}

func (r *RedisStore) Delete(userID uint, key string) error {
	if err := r.client.Del(r.ctx, r.authKey(userID, key)).Err(); err != nil {
		slog.Error("Redis delete error", "error", err, "key", key)
		return err
	}
	return nil
}

func (r *RedisStore) GetSurvey(userID uint) (*models.SurveySession, error) {
	val, err := r.client.Get(r.ctx, r.surveyKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &models.SurveySession{}, nil
		}
		slog.Error("Redis survey get error", "error", err, "userID", userID)
		return nil, err
	}

	var session models.SurveySession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		slog.Error("Redis survey unmarshal error", "error", err, "userID", userID)
		return nil, err
	}

	return &session, nil
}

// SetSurvey writes the whole snapshot in a single SET so the replace is
// atomic from the reader's point of view
func (r *RedisStore) SetSurvey(userID uint, session *models.SurveySession) error {
	if session == nil {
		return r.ClearSurvey(userID)
	}

	data, err := json.Marshal(session)
	if err != nil {
		slog.Error("Redis survey marshal error", "error", err, "userID", userID)
		return err
	}

	if err := r.client.Set(r.ctx, r.surveyKey(userID), data, r.sessionTTL).Err(); err != nil {
		slog.Error("Redis survey set error", "error", err, "userID", userID)
		return err
	}
	return nil
}

func (r *RedisStore) ClearSurvey(userID uint) error {
	if err := r.client.Del(r.ctx, r.surveyKey(userID)).Err(); err != nil {
		slog.Error("Redis survey delete error", "error", err, "userID", userID)
		return err
	}
	return nil
}

// Close shuts down the underlying redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ensure implementations satisfy interfaces
var _ AuthStateStore = (*RedisStore)(nil)
var _ SessionStore = (*RedisStore)(nil)
