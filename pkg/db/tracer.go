package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"worklog/pkg/metrics"
	"worklog/pkg/otel"
)

const defaultSlowThreshold = 100 * time.Millisecond

type queryStartKey struct{}

type queryStart struct {
	at        time.Time
	sql       string
	operation string
	span      trace.Span
}

// QueryTracer implements pgx.QueryTracer: every statement gets a span and a latency
// observation; statements slower than the threshold are logged.
type QueryTracer struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewQueryTracer 创建查询 Tracer, threshold 0 means 100ms
func NewQueryTracer(logger *zap.Logger, slowThreshold time.Duration) *QueryTracer {
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowThreshold
	}
	return &QueryTracer{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// TraceQueryStart 查询开始时的钩子
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := Operation(data.SQL)
	ctx, span := otel.DBSpan(ctx, op, truncateSQL(data.SQL))
	return context.WithValue(ctx, queryStartKey{}, &queryStart{
		at:        time.Now(),
		sql:       data.SQL,
		operation: op,
		span:      span,
	})
}

// TraceQueryEnd 查询结束时的钩子
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(*queryStart)
	if !ok {
		return
	}

	duration := time.Since(start.at)
	otel.EndDBSpan(start.span, data.Err)
	metrics.RecordDBQueryDuration(start.operation, duration)

	if duration > t.slowThreshold {
		t.logger.Warn("slow-query",
			zap.String("sql", truncateSQL(start.sql)),
			zap.Duration("took", duration),
			zap.String("command_tag", data.CommandTag.String()),
		)
		metrics.IncrementSlowQuery(start.operation)
	}
}

// Operation returns the lower-cased leading SQL keyword, e.g. "select".
func Operation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	op := strings.ToLower(fields[0])
	if op == "with" {
		return "select"
	}
	return op
}

// 截断 SQL 语句（避免日志过长）
func truncateSQL(sql string) string {
	sql = strings.Join(strings.Fields(sql), " ")
	if len(sql) > 200 {
		return sql[:200] + "..."
	}
	return sql
}
