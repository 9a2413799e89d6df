// Package cache keeps catalog reference data (vehicle groups, locations) in
// Redis in front of the postgres repositories. Bookings, vehicles and discount
// codes are never cached: they take part in confirmation and must be read
// from the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

const keyPrefix = "rentacar:catalog:"

type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{client: client, ttl: ttl}
}

// Groups wraps next with a read-through cache.
func (c *Catalog) Groups(next repository.GroupRepository) repository.GroupRepository {
	return &cachedGroups{c: c, next: next}
}

// Locations wraps next with a read-through cache.
func (c *Catalog) Locations(next repository.LocationRepository) repository.LocationRepository {
	return &cachedLocations{c: c, next: next}
}

// Invalidate drops every cached catalog entry, e.g. after a price change.
func (c *Catalog) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Catalog) get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Catalog cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Catalog cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Catalog) set(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("Catalog cache write failed", "key", key, "error", err)
	}
}

func groupKey(id string) string    { return fmt.Sprintf("%sgroup:%s", keyPrefix, id) }
func locationKey(id string) string { return fmt.Sprintf("%slocation:%s", keyPrefix, id) }

const (
	activeGroupsKey = keyPrefix + "groups:active"
	locationsKey    = keyPrefix + "locations"
)

type cachedGroups struct {
	c    *Catalog
	next repository.GroupRepository
}

func (g *cachedGroups) GetByID(ctx context.Context, id string) (*domain.VehicleGroup, error) {
	var cached domain.VehicleGroup
	if g.c.get(ctx, groupKey(id), &cached) {
		return &cached, nil
	}
	group, err := g.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g.c.set(ctx, groupKey(id), group)
	return group, nil
}

func (g *cachedGroups) ListActive(ctx context.Context) ([]domain.VehicleGroup, error) {
	var cached []domain.VehicleGroup
	if g.c.get(ctx, activeGroupsKey, &cached) {
		return cached, nil
	}
	groups, err := g.next.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	g.c.set(ctx, activeGroupsKey, groups)
	return groups, nil
}

type cachedLocations struct {
	c    *Catalog
	next repository.LocationRepository
}

func (l *cachedLocations) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	var cached domain.Location
	if l.c.get(ctx, locationKey(id), &cached) {
		return &cached, nil
	}
	loc, err := l.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.c.set(ctx, locationKey(id), loc)
	return loc, nil
}

func (l *cachedLocations) List(ctx context.Context) ([]domain.Location, error) {
	var cached []domain.Location
	if l.c.get(ctx, locationsKey, &cached) {
		return cached, nil
	}
	locs, err := l.next.List(ctx)
	if err != nil {
		return nil, err
	}
	l.c.set(ctx, locationsKey, locs)
	return locs, nil
}
