package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Item caching
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// Request caching
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
	SetRequest(ctx context.Context, request *models.Request, ttl time.Duration) error
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error

	// Notification queue used by the email worker
	PushNotification(ctx context.Context, payload []byte) error
	PopNotification(ctx context.Context, timeout time.Duration) ([]byte, error)

	// Cache invalidation
	InvalidateItems(ctx context.Context) error
	InvalidateAll(ctx context.Context) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
		addr = hostPort
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &redisCacheService{client: client}
}

const notificationQueueKey = "kipventory:notifications"

func (r *redisCacheService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	key := fmt.Sprintf("kipventory:item:%s", itemID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	key := fmt.Sprintf("kipventory:item:%s", item.ID.String())
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	key := fmt.Sprintf("kipventory:item:%s", itemID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	key := fmt.Sprintf("kipventory:request:%s", requestID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var request models.Request
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *redisCacheService) SetRequest(ctx context.Context, request *models.Request, ttl time.Duration) error {
	key := fmt.Sprintf("kipventory:request:%s", request.ID.String())
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	key := fmt.Sprintf("kipventory:request:%s", requestID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) PushNotification(ctx context.Context, payload []byte) error {
	return r.client.RPush(ctx, notificationQueueKey, payload).Err()
}

func (r *redisCacheService) PopNotification(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := r.client.BLPop(ctx, timeout, notificationQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // nothing queued
		}
		return nil, err
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

func (r *redisCacheService) InvalidateItems(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "kipventory:item:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) InvalidateAll(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "kipventory:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
