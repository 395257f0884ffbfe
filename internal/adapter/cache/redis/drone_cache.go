package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

const droneKeyPrefix = "drone:"

// DroneCache caches full drone records in Redis as JSON with a fixed TTL.
// A cache miss is reported as (nil, nil) so callers fall through to the
// repository.
type DroneCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewDroneCache(client *redis.Client, ttl time.Duration, appLogger *logger.Logger) *DroneCache {
	return &DroneCache{
		client: client,
		ttl:    ttl,
		logger: appLogger.Named("DroneCacheRedis"),
	}
}

func droneKey(id string) string {
	return droneKeyPrefix + id
}

func (c *DroneCache) GetDrone(ctx context.Context, id string) (*domain.Drone, error) {
	data, err := c.client.Get(ctx, droneKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get drone from cache: %w", err)
	}

	var drone domain.Drone
	if err := json.Unmarshal(data, &drone); err != nil {
		// stale or corrupted entry, drop it and report a miss
		c.logger.Warn("Failed to unmarshal cached drone, evicting", zap.String("drone_id", id), zap.Error(err))
		if delErr := c.client.Del(ctx, droneKey(id)).Err(); delErr != nil {
			c.logger.Warn("Failed to evict corrupted cache entry", zap.String("drone_id", id), zap.Error(delErr))
		}
		return nil, nil
	}
	return &drone, nil
}

func (c *DroneCache) SetDrone(ctx context.Context, drone *domain.Drone) error {
	data, err := json.Marshal(drone)
	if err != nil {
		return fmt.Errorf("failed to marshal drone for cache: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, droneKey(drone.ID), data, c.ttl)
	if drone.LegacyID != "" {
		pipe.Set(ctx, droneKey(drone.LegacyID), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set drone in cache: %w", err)
	}
	return nil
}

func (c *DroneCache) DeleteDrone(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, droneKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete drone from cache: %w", err)
	}
	return nil
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
