package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cachePrefix = "analytics:"
	cacheTTL    = 10 * time.Minute
)

// Cache memoizes the two dashboard envelopes in Redis, keyed by filter.
// A nil client disables caching; the dataset only changes on import, so
// Flush is called after every successful batch.
type Cache struct {
	Rdb *redis.Client
}

// CachedOverview returns the overview for the filter, from Redis when warm.
func (c *Cache) CachedOverview(ctx context.Context, svc *Service, f Filter) (*Overview, error) {
	key := cachePrefix + "overview:" + f.Key()
	var cached Overview
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	out, err := svc.BuildOverview(ctx, f)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, out)
	return out, nil
}

// CachedFinancialAnalysis returns the financial-analysis block for the
// filter, from Redis when warm.
func (c *Cache) CachedFinancialAnalysis(ctx context.Context, svc *Service, f Filter) (*FinancialAnalysis, error) {
	key := cachePrefix + "analysis:" + f.Key()
	var cached FinancialAnalysis
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	out, err := svc.BuildFinancialAnalysis(ctx, f)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, out)
	return out, nil
}

// Flush drops every cached envelope. Called after a successful import.
func (c *Cache) Flush(ctx context.Context) {
	if c == nil || c.Rdb == nil {
		return
	}
	iter := c.Rdb.Scan(ctx, 0, cachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.Rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Warn().Err(err).Str("key", iter.Val()).Msg("cache flush")
		}
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("cache flush scan")
	}
}

func (c *Cache) lookup(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.Rdb == nil {
		return false
	}
	raw, err := c.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("cache lookup")
		}
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *Cache) put(ctx context.Context, key string, v interface{}) {
	if c == nil || c.Rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache put")
	}
}
