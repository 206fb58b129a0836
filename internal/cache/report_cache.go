package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/restoops/backend-go/internal/config"
	"github.com/restoops/backend-go/internal/engine"
)

const (
	reportKeyPrefix     = "analytics:report"
	reportScanBatchSize = 100
)

// ReportKey identifies one cached report. All fields participate in the key
// so two requests only share an entry when every analysis parameter matches.
type ReportKey struct {
	ItemID       int64
	WindowStart  time.Time
	WindowEnd    time.Time
	AsOf         time.Time
	HorizonDays  int
	LeadTimeDays int
}

type ReportCache interface {
	Get(ctx context.Context, key ReportKey) (*engine.Report, bool, error)
	Set(ctx context.Context, key ReportKey, report *engine.Report) error
	InvalidateItem(ctx context.Context, itemID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis-backed cache when caching is enabled and the
// server can reach redis, a no-op cache otherwise.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, key ReportKey) (*engine.Report, bool, error) {
	payload, err := c.client.Get(ctx, buildReportKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report engine.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, key ReportKey, report *engine.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, buildReportKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateItem(ctx context.Context, itemID int64) error {
	prefix := fmt.Sprintf("%s:%d:", reportKeyPrefix, itemID)
	return deleteKeysWithPrefix(ctx, c.client, prefix, reportScanBatchSize)
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) Get(ctx context.Context, key ReportKey) (*engine.Report, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) Set(ctx context.Context, key ReportKey, report *engine.Report) error {
	return nil
}

func (n *noopReportCache) InvalidateItem(ctx context.Context, itemID int64) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// buildReportKey keeps the item id visible in the key so per-item
// invalidation can scan on a plain prefix; the remaining parameters are
// hashed.
func buildReportKey(key ReportKey) string {
	return fmt.Sprintf("%s:%d:%s", reportKeyPrefix, key.ItemID, reportParamsHash(key))
}

func reportParamsHash(key ReportKey) string {
	raw := fmt.Sprintf("window=%s..%s|as_of=%s|horizon=%d|lead_time=%d",
		key.WindowStart.UTC().Format("2006-01-02"),
		key.WindowEnd.UTC().Format("2006-01-02"),
		key.AsOf.UTC().Format(time.RFC3339),
		key.HorizonDays,
		key.LeadTimeDays,
	)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
