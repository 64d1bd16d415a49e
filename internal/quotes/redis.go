package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultReadTimeout bounds a single quote lookup.
const DefaultReadTimeout = 2 * time.Second

// RedisSource reads order-book documents from Redis.
type RedisSource struct {
	client      *redis.Client
	readTimeout time.Duration
	logger      *zap.Logger
}

// RedisSourceConfig holds RedisSource configuration.
type RedisSourceConfig struct {
	Client      *redis.Client
	ReadTimeout time.Duration
	Logger      *zap.Logger
}

// NewRedisSource creates a quote source backed by Redis.
func NewRedisSource(cfg RedisSourceConfig) (*RedisSource, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}

	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisSource{
		client:      cfg.Client,
		readTimeout: timeout,
		logger:      logger,
	}, nil
}

// Quotes implements Source. A missing key or an unreadable document yields an
// empty pair; only connectivity failures are returned as errors.
func (s *RedisSource) Quotes(ctx context.Context, regionID int32, itemID int32) (types.QuotePair, error) {
	key := Key(regionID, itemID)

	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	start := time.Now()
	data, err := s.client.Get(readCtx, key).Bytes()
	ReadDurationSeconds.Observe(time.Since(start).Seconds())

	if errors.Is(err, redis.Nil) {
		LookupsTotal.WithLabelValues("missing").Inc()
		return types.QuotePair{}, nil
	}
	if err != nil {
		LookupsTotal.WithLabelValues("error").Inc()
		return types.QuotePair{}, fmt.Errorf("get %s: %w", key, err)
	}

	var payload types.BookPayload
	err = json.Unmarshal(data, &payload)
	if err != nil {
		LookupsTotal.WithLabelValues("malformed").Inc()
		s.logger.Warn("quote-payload-malformed",
			zap.String("key", key),
			zap.Error(err))
		return types.QuotePair{}, nil
	}

	LookupsTotal.WithLabelValues("found").Inc()
	return payload.Best(), nil
}
