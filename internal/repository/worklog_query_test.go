package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/model"
)

func ptr[T any](v T) *T { return &v }

func date(t *testing.T, s string) *model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestBuildWorkLogListUnfiltered(t *testing.T) {
	sql, args, err := buildWorkLogList(model.WorkLogFilter{}, true).ToSql()
	require.NoError(t, err)

	assert.Empty(t, args)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "LEFT JOIN users u ON wl.user_id = u.id")
	assert.Contains(t, sql, "LEFT JOIN phases ph ON wl.phase_id = ph.id")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY wl.log_date DESC, wl.created_at DESC, wl.id DESC"), sql)
}

func TestBuildWorkLogListAllFilters(t *testing.T) {
	f := model.WorkLogFilter{
		ProjectID: ptr(int64(3)),
		PhaseID:   ptr(int64(7)),
		UserID:    ptr(int64(11)),
		StartDate: date(t, "2024-01-01"),
		EndDate:   date(t, "2024-01-31"),
	}
	sql, args, err := buildWorkLogList(f, true).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE wl.project_id = $1 AND wl.phase_id = $2 AND wl.user_id = $3 AND wl.log_date >= $4 AND wl.log_date <= $5")
	assert.Equal(t, []any{int64(3), int64(7), int64(11), "2024-01-01", "2024-01-31"}, args)
}

func TestBuildWorkLogListWithoutUserJoin(t *testing.T) {
	sql, args, err := buildWorkLogList(model.WorkLogFilter{UserID: ptr(int64(5)), EndDate: date(t, "2024-02-01")}, false).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "users u")
	assert.NotContains(t, sql, "user_email")
	assert.Contains(t, sql, "WHERE wl.user_id = $1 AND wl.log_date <= $2")
	assert.Equal(t, []any{int64(5), "2024-02-01"}, args)
}

func TestBuildWorkLogByID(t *testing.T) {
	sql, args, err := buildWorkLogByID(9).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE wl.id = $1")
	assert.NotContains(t, sql, "ORDER BY")
	assert.Equal(t, []any{int64(9)}, args)
}

func TestBuildStatsQueries(t *testing.T) {
	r := model.DateRange{StartDate: date(t, "2024-03-01")}

	sql, args, err := buildStatsTotals(42, r).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "COUNT(*) AS total_logs")
	assert.Contains(t, sql, "COALESCE(SUM(wl.hours_spent), 0)")
	assert.Contains(t, sql, "COUNT(DISTINCT wl.log_date) AS days_logged")
	assert.Contains(t, sql, "WHERE wl.user_id = $1 AND wl.log_date >= $2")
	assert.Equal(t, []any{int64(42), "2024-03-01"}, args)

	sql, args, err = buildProjectBreakdown(42, model.DateRange{}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN projects p ON wl.project_id = p.id")
	assert.Contains(t, sql, "GROUP BY p.id, p.name")
	assert.Contains(t, sql, "ORDER BY total_hours DESC")
	assert.Equal(t, []any{int64(42)}, args)
}

func TestBuildWorkLogUpdate(t *testing.T) {
	t.Run("no fields", func(t *testing.T) {
		_, ok := buildWorkLogUpdate(1, model.UpdateWorkLogInput{})
		assert.False(t, ok)
	})

	t.Run("only present members, null clears", func(t *testing.T) {
		in := model.UpdateWorkLogInput{
			HoursSpent: model.Some(0.0),
			Notes:      model.Null[string](),
		}
		q, ok := buildWorkLogUpdate(5, in)
		require.True(t, ok)

		sql, args, err := q.ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "UPDATE work_logs SET hours_spent = $1, notes = $2 WHERE id = $3 RETURNING id, user_id,")
		require.Len(t, args, 3)
		assert.Equal(t, ptr(0.0), args[0], "zero hours is a real value")
		assert.Nil(t, args[1])
		assert.Equal(t, int64(5), args[2])
	})

	t.Run("trims text", func(t *testing.T) {
		in := model.UpdateWorkLogInput{
			WorkDescription: model.Some("  fixed bug  "),
			Notes:           model.Some("   "),
			LogDate:         model.Some(*date(t, "2024-05-06")),
		}
		q, ok := buildWorkLogUpdate(5, in)
		require.True(t, ok)
		sql, args, err := q.ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "SET log_date = $1, work_description = $2, notes = $3 WHERE id = $4")
		assert.Equal(t, "2024-05-06", args[0])
		assert.Equal(t, "fixed bug", args[1])
		assert.Nil(t, args[2], "blank notes are stored as NULL")
	})
}

func TestBuildProjectUpdate(t *testing.T) {
	_, ok := buildProjectUpdate(1, model.UpdateProjectInput{})
	assert.False(t, ok)

	q, ok := buildProjectUpdate(2, model.UpdateProjectInput{
		Status:           model.Some("completed"),
		ProjectManagerID: model.Null[int64](),
	})
	require.True(t, ok)
	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "UPDATE projects SET project_manager_id = $1, status = $2 WHERE id = $3 RETURNING")
	assert.Nil(t, args[0])
	assert.Equal(t, "completed", args[1])
}
