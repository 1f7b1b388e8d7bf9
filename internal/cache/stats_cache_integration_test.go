//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"worklog/internal/model"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Skipping test: cannot start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func report(logs int64) *model.StatsReport {
	return &model.StatsReport{Stats: model.WorkLogStats{TotalLogs: logs}, ProjectBreakdown: []model.ProjectHours{}}
}

func TestIntegrationStatsCache(t *testing.T) {
	c := NewStatsCache(startRedis(t), 0, zap.NewNop())
	ctx := context.Background()
	all := model.DateRange{}

	t.Run("set then hit", func(t *testing.T) {
		_, version, ok := c.Get(ctx, 1, all)
		require.False(t, ok)
		c.Set(ctx, 1, version, all, report(3))

		got, _, ok := c.Get(ctx, 1, all)
		require.True(t, ok)
		assert.Equal(t, int64(3), got.Stats.TotalLogs)
	})

	t.Run("report computed before an invalidation is never served", func(t *testing.T) {
		_, version, ok := c.Get(ctx, 2, all)
		require.False(t, ok)

		c.Invalidate(ctx, 2)
		c.Set(ctx, 2, version, all, report(1))

		_, _, ok = c.Get(ctx, 2, all)
		assert.False(t, ok)
	})

	t.Run("global invalidation drops every user", func(t *testing.T) {
		for _, uid := range []int64{3, 4} {
			_, version, _ := c.Get(ctx, uid, all)
			c.Set(ctx, uid, version, all, report(5))
		}

		c.InvalidateAll(ctx)

		for _, uid := range []int64{3, 4} {
			_, _, ok := c.Get(ctx, uid, all)
			assert.False(t, ok, "user %d", uid)
		}
	})
}
