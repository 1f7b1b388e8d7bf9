package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/pkg/metrics"
)

const (
	DefaultStatsTTL = 5 * time.Minute
	keyPrefix       = "worklog:stats"

	globalGenerationKey = keyPrefix + ":gen:all"
)

// StatsCache keeps per-user statistics in Redis.
// Entries are keyed by a global and a per-user generation counter; bumping either
// orphans every cached range at once and the TTL reclaims them.
type StatsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached report and the version it looked under. The version is
// "" when the generations could not be read; Set then stores nothing.
func (c *StatsCache) Get(ctx context.Context, userID int64, r model.DateRange) (*model.StatsReport, string, bool) {
	version, err := c.version(ctx, userID)
	if err != nil {
		c.fail("get generation", userID, err)
		return nil, "", false
	}

	data, err := c.rdb.Get(ctx, entryKey(userID, version, r)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncrementStatsCacheLookup("miss")
			return nil, version, false
		}
		c.fail("get entry", userID, err)
		return nil, version, false
	}

	var report model.StatsReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.fail("decode entry", userID, err)
		return nil, version, false
	}

	metrics.IncrementStatsCacheLookup("hit")
	return &report, version, true
}

// Set stores report under the version Get returned, so a report computed before
// an invalidation lands on an orphaned key.
func (c *StatsCache) Set(ctx context.Context, userID int64, version string, r model.DateRange, report *model.StatsReport) {
	if version == "" {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("Stats cache encode failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, entryKey(userID, version, r), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Stats cache set failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Invalidate bumps the user's generation so older entries are never read again.
func (c *StatsCache) Invalidate(ctx context.Context, userID int64) {
	if err := c.rdb.Incr(ctx, generationKey(userID)).Err(); err != nil {
		c.logger.Warn("Stats cache invalidate failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// InvalidateAll bumps the global generation (project rename or delete).
func (c *StatsCache) InvalidateAll(ctx context.Context) {
	if err := c.rdb.Incr(ctx, globalGenerationKey).Err(); err != nil {
		c.logger.Warn("Stats cache global invalidate failed", zap.Error(err))
	}
}

// version reads both generations in one round trip; missing keys count as 0.
func (c *StatsCache) version(ctx context.Context, userID int64) (string, error) {
	vals, err := c.rdb.MGet(ctx, globalGenerationKey, generationKey(userID)).Result()
	if err != nil {
		return "", err
	}
	return formatVersion(vals)
}

func (c *StatsCache) fail(op string, userID int64, err error) {
	metrics.IncrementStatsCacheLookup("error")
	c.logger.Warn("Stats cache lookup failed",
		zap.String("op", op),
		zap.Int64("user_id", userID),
		zap.Error(err),
	)
}

func generationKey(userID int64) string {
	return fmt.Sprintf("%s:gen:%d", keyPrefix, userID)
}

// formatVersion turns MGET results into "<global>.<user>".
func formatVersion(vals []any) (string, error) {
	gens := make([]int64, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("unexpected generation type %T", v)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", fmt.Errorf("parse generation: %w", err)
		}
		gens[i] = n
	}
	if len(gens) != 2 {
		return "", fmt.Errorf("expected 2 generations, got %d", len(gens))
	}
	return fmt.Sprintf("%d.%d", gens[0], gens[1]), nil
}

// entryKey e.g. "worklog:stats:7:1.3:2024-01-01:-"
func entryKey(userID int64, version string, r model.DateRange) string {
	return fmt.Sprintf("%s:%d:%s:%s:%s", keyPrefix, userID, version, dateKey(r.StartDate), dateKey(r.EndDate))
}

func dateKey(d *model.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
