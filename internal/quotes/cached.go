package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/mselser95/eve-trade-arb/pkg/cache"
	"github.com/mselser95/eve-trade-arb/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedSource keeps recently read quotes in process memory and coalesces
// concurrent lookups of the same key into one upstream read.
type CachedSource struct {
	inner  Source
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// CachedSourceConfig holds CachedSource configuration.
type CachedSourceConfig struct {
	Inner  Source
	Cache  cache.Cache
	TTL    time.Duration
	Logger *zap.Logger
}

// NewCachedSource wraps inner with an in-process cache.
func NewCachedSource(cfg CachedSourceConfig) (*CachedSource, error) {
	if cfg.Inner == nil {
		return nil, errors.New("inner quote source is required")
	}
	if cfg.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CachedSource{
		inner:  cfg.Inner,
		cache:  cfg.Cache,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// Quotes implements Source. Errors are never cached.
//
// The shared upstream read does not inherit any single caller's
// cancellation; it stays bounded by the inner source's read timeout.
// Each caller stops waiting when its own context is done.
func (c *CachedSource) Quotes(ctx context.Context, regionID int32, itemID int32) (types.QuotePair, error) {
	key := Key(regionID, itemID)

	if v, ok := c.cache.Get(key); ok {
		if pair, ok := v.(types.QuotePair); ok {
			return pair, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		pair, err := c.inner.Quotes(context.WithoutCancel(ctx), regionID, itemID)
		if err != nil {
			return types.QuotePair{}, err
		}
		c.cache.Set(key, pair, c.ttl)
		return pair, nil
	})

	select {
	case <-ctx.Done():
		return types.QuotePair{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			CoalescedLookupsTotal.Inc()
		}
		if res.Err != nil {
			return types.QuotePair{}, res.Err
		}
		return res.Val.(types.QuotePair), nil
	}
}

// Invalidate drops every cached quote, typically after the loader has
// written fresh order books.
func (c *CachedSource) Invalidate() {
	c.cache.Clear()
	c.logger.Debug("quote-cache-invalidated")
}
