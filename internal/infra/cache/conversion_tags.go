package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const (
	DefaultTagTTL = 10 * time.Minute
	tagKeyPrefix  = "conversion_tag:"
	missingMarker = "null"
)

// tagStore is the slice of the redis API the cache uses.
type tagStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ConversionTagCache is a read-through Redis cache in front of the conversion_tags table.
// Redis being down only costs a database round trip.
type ConversionTagCache struct {
	client tagStore
	source entity.ConversionTagRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

// NewConversionTagCache accepts a nil client, in which case every lookup goes to source.
func NewConversionTagCache(client *redis.Client, source entity.ConversionTagRepositoryInterface, ttl time.Duration, logger *zap.Logger) *ConversionTagCache {
	var store tagStore
	if client != nil {
		store = client
	}
	return newConversionTagCache(store, source, ttl, logger)
}

func newConversionTagCache(store tagStore, source entity.ConversionTagRepositoryInterface, ttl time.Duration, logger *zap.Logger) *ConversionTagCache {
	if ttl <= 0 {
		ttl = DefaultTagTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionTagCache{client: store, source: source, ttl: ttl, logger: logger}
}

func (c *ConversionTagCache) FindByEventType(ctx context.Context, eventType string) (*entity.ConversionTag, error) {
	key := tagKeyPrefix + eventType

	if c.client != nil {
		data, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if string(data) == missingMarker {
				return nil, entity.ErrConversionTagNotFound
			}
			var tag entity.ConversionTag
			if err := json.Unmarshal(data, &tag); err == nil {
				return &tag, nil
			}
			c.logger.Warn("corrupted conversion tag cache entry", zap.String("key", key))
			_ = c.client.Del(ctx, key).Err()
		case errors.Is(err, redis.Nil):
			// miss
		default:
			c.logger.Warn("conversion tag cache unavailable", zap.String("event_type", eventType), zap.Error(err))
		}
	}

	tag, err := c.source.FindByEventType(ctx, eventType)
	if errors.Is(err, entity.ErrConversionTagNotFound) {
		c.store(ctx, key, []byte(missingMarker))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(tag); err == nil {
		c.store(ctx, key, data)
	}
	return tag, nil
}

func (c *ConversionTagCache) store(ctx context.Context, key string, value []byte) {
	if c.client == nil || ctx.Err() != nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Debug("conversion tag cache write failed", zap.String("key", key), zap.Error(err))
	}
}
