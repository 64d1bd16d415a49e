package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpportunityKeyPrefix prefixes every stored batch result.
const OpportunityKeyPrefix = "opportunities"

// DefaultOpportunityTTL is how long a stored batch result stays readable.
const DefaultOpportunityTTL = 2 * time.Hour

const scanCount = 500

// OpportunityKey returns the key holding one item's batch result.
func OpportunityKey(itemID int32) string {
	return OpportunityKeyPrefix + ":" + strconv.Itoa(int(itemID))
}

// RedisStorage implements Store using one JSON document per item.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisConfig holds Redis storage configuration.
type RedisConfig struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

// NewRedisStorage creates a new Redis storage.
func NewRedisStorage(cfg *RedisConfig) (*RedisStorage, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultOpportunityTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("redis-storage-initialized", zap.Duration("ttl", ttl))

	return &RedisStorage{
		client: cfg.Client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// StoreItemOpportunities overwrites the item's document. An empty list
// deletes it so readers stop seeing stale opportunities.
func (r *RedisStorage) StoreItemOpportunities(ctx context.Context, itemID int32, opps []*arbitrage.Opportunity) error {
	key := OpportunityKey(itemID)

	if len(opps) == 0 {
		err := r.client.Del(ctx, key).Err()
		if err != nil {
			StoreOperationsTotal.WithLabelValues("redis", "error").Inc()
			return fmt.Errorf("delete %s: %w", key, err)
		}
		StoreOperationsTotal.WithLabelValues("redis", "cleared").Inc()
		return nil
	}

	data, err := json.Marshal(opps)
	if err != nil {
		return fmt.Errorf("marshal opportunities for item %d: %w", itemID, err)
	}

	err = r.client.Set(ctx, key, data, r.ttl).Err()
	if err != nil {
		StoreOperationsTotal.WithLabelValues("redis", "error").Inc()
		return fmt.Errorf("set %s: %w", key, err)
	}

	StoreOperationsTotal.WithLabelValues("redis", "stored").Inc()
	r.logger.Debug("item-opportunities-stored",
		zap.Int32("item-id", itemID),
		zap.Int("count", len(opps)))

	return nil
}

// ItemOpportunities implements Reader.
func (r *RedisStorage) ItemOpportunities(ctx context.Context, itemID int32) ([]*arbitrage.Opportunity, error) {
	key := OpportunityKey(itemID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var opps []*arbitrage.Opportunity
	err = json.Unmarshal(data, &opps)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	return opps, nil
}

// AllOpportunities implements Reader. Unreadable documents are skipped.
func (r *RedisStorage) AllOpportunities(ctx context.Context) ([]*arbitrage.Opportunity, error) {
	var keys []string

	iter := r.client.Scan(ctx, 0, OpportunityKeyPrefix+":*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	err := iter.Err()
	if err != nil {
		return nil, fmt.Errorf("scan opportunity keys: %w", err)
	}

	result := make([]*arbitrage.Opportunity, 0)

	for start := 0; start < len(keys); start += scanCount {
		end := min(start+scanCount, len(keys))

		values, err := r.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, fmt.Errorf("read opportunity documents: %w", err)
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				// expired between SCAN and MGET
				continue
			}

			var opps []*arbitrage.Opportunity
			err = json.Unmarshal([]byte(raw), &opps)
			if err != nil {
				r.logger.Warn("stored-opportunities-malformed",
					zap.String("key", keys[start+i]),
					zap.Error(err))
				continue
			}
			result = append(result, opps...)
		}
	}

	return result, nil
}

// Close is a no-op; the client is owned by the caller.
func (r *RedisStorage) Close() error {
	r.logger.Info("closing-redis-storage")
	return nil
}
