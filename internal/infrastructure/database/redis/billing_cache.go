package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

const settingsKey = "settings:current"

// CachedSettings reads settings through the cache and drops the cached copy
// on every update.
type CachedSettings struct {
	store  settings.Store
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedSettings(store settings.Store, cache Cache, ttl time.Duration, log logging.Logger) *CachedSettings {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedSettings{store: store, cache: cache, ttl: ttl, logger: log}
}

var _ settings.Store = (*CachedSettings)(nil)

func (c *CachedSettings) Current(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := c.cache.GetOrSet(ctx, settingsKey, &s, c.ttl, func(ctx context.Context) (interface{}, error) {
		return c.store.Current(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *CachedSettings) Update(ctx context.Context, s *settings.Settings) error {
	if err := c.store.Update(ctx, s); err != nil {
		return err
	}
	if err := c.cache.Delete(ctx, settingsKey); err != nil {
		c.logger.Warn("failed to invalidate cached settings", logging.Err(err))
	}
	return nil
}

// SummaryCache holds monthly report summaries keyed by month and financial year.
type SummaryCache struct {
	cache Cache
	ttl   time.Duration
}

func NewSummaryCache(cache Cache, ttl time.Duration) *SummaryCache {
	return &SummaryCache{cache: cache, ttl: ttl}
}

func summaryKey(month billing.Month, fyStart int) string {
	return fmt.Sprintf("summary:%d:%s", fyStart, month)
}

// GetOrLoad returns the cached summary or computes and stores it.
func (c *SummaryCache) GetOrLoad(ctx context.Context, month billing.Month, fyStart int, load func(ctx context.Context) (*billing.Summary, error)) (*billing.Summary, error) {
	var s billing.Summary
	err := c.cache.GetOrSet(ctx, summaryKey(month, fyStart), &s, c.ttl, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Invalidate drops the summary for one month.
func (c *SummaryCache) Invalidate(ctx context.Context, month billing.Month, fyStart int) error {
	return c.cache.Delete(ctx, summaryKey(month, fyStart))
}

// InvalidateAll drops every cached summary.
func (c *SummaryCache) InvalidateAll(ctx context.Context) (int64, error) {
	return c.cache.DeleteByPrefix(ctx, "summary:")
}

//Personal.AI order the ending
