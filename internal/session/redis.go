package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "cart:"

// RedisClient is the subset of *redis.Client the store needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps carts as JSON values that expire after ttl idle time.
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and checks it answers.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*models.Cart, error) {
	key := redisKeyPrefix + id
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Cart{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "session.load", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "session.load", fmt.Errorf("corrupt cart %s: %w", id, err))
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "session.load", err)
	}
	return &cart, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return apperr.Wrap(apperr.Persistence, "session.save", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, data, s.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.Persistence, "session.save", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return apperr.Wrap(apperr.Persistence, "session.delete", err)
	}
	return nil
}
