// Package cache holds the optional redis cache of the active zone list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crimewatch/config"
	"crimewatch/internal/logger"
	"crimewatch/internal/metrics"
	"crimewatch/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	activeZonesKey = "crimewatch:zones:active"
	generationKey  = "crimewatch:zones:active:gen"
)

// ZoneCache stores the priority-ordered active zone list as JSON. A nil
// *ZoneCache is valid and always misses.
type ZoneCache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects and pings redis. It returns nil, nil when no address is configured.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewZoneCache(client *redis.Client, ttl time.Duration) *ZoneCache {
	if client == nil {
		return nil
	}
	return &ZoneCache{client: client, ttl: ttl}
}

// GetActive reads the current generation and the list stored under it. The
// generation is returned on a miss too, for the following SetActive.
func (c *ZoneCache) GetActive(ctx context.Context) ([]models.GeofenceZone, string, bool) {
	if c == nil {
		return nil, "", false
	}
	gen, err := c.client.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		gen = "0"
	} else if err != nil {
		metrics.ZoneCacheTotal.WithLabelValues("error").Inc()
		logger.Component("zone_cache").Warn("get generation failed", "err", err)
		return nil, "", false
	}
	raw, err := c.client.Get(ctx, listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ZoneCacheTotal.WithLabelValues("miss").Inc()
		return nil, gen, false
	}
	if err != nil {
		metrics.ZoneCacheTotal.WithLabelValues("error").Inc()
		logger.Component("zone_cache").Warn("get failed", "err", err)
		return nil, gen, false
	}
	var zones []models.GeofenceZone
	if err := json.Unmarshal(raw, &zones); err != nil {
		metrics.ZoneCacheTotal.WithLabelValues("error").Inc()
		return nil, gen, false
	}
	metrics.ZoneCacheTotal.WithLabelValues("hit").Inc()
	return zones, gen, true
}

// SetActive stores zones under generation gen. After an Invalidate nobody
// reads that generation again, so a list loaded before the change is never
// served. An empty gen is ignored.
func (c *ZoneCache) SetActive(ctx context.Context, gen string, zones []models.GeofenceZone) {
	if c == nil || gen == "" {
		return
	}
	raw, err := json.Marshal(zones)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listKey(gen), raw, c.ttl).Err(); err != nil {
		logger.Component("zone_cache").Warn("set failed", "err", err)
	}
}

// Invalidate bumps the generation. Lists of older generations expire by TTL.
func (c *ZoneCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		logger.Component("zone_cache").Warn("invalidate failed", "err", err)
	}
}

func listKey(gen string) string {
	return activeZonesKey + ":" + gen
}
