package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service/servicetest"
)

type worklogFixture struct {
	svc      *WorkLogService
	logs     *servicetest.WorkLogs
	projects *servicetest.Projects
	phases   *servicetest.Phases
	users    *servicetest.Users
	cache    *servicetest.StatsCache
}

func newWorkLogFixture(logs ...model.WorkLog) *worklogFixture {
	f := &worklogFixture{
		logs:     servicetest.NewWorkLogs(logs...),
		projects: servicetest.NewProjects(1, 2),
		phases: servicetest.NewPhases(
			model.Phase{ID: 10, ProjectID: 1, PhaseName: "Design", PhaseOrder: 1},
			model.Phase{ID: 20, ProjectID: 2, PhaseName: "Build", PhaseOrder: 1},
		),
		users: servicetest.NewUsers(),
		cache: servicetest.NewStatsCache(),
	}
	f.svc = NewWorkLogService(f.logs, f.projects, f.phases, f.users, f.cache, zap.NewNop())
	return f
}

func hours(h float64) *float64 { return &h }
func id(v int64) *int64        { return &v }

func TestCreateWorkLogHoursBounds(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		hours   *float64
		wantErr bool
	}{
		{"zero is a real value", hours(0), false},
		{"upper bound inclusive", hours(24), false},
		{"fractional", hours(7.5), false},
		{"absent", nil, false},
		{"over a day", hours(25), true},
		{"negative", hours(-1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkLogFixture()
			w, err := f.svc.Create(ctx, 7, model.CreateWorkLogInput{
				ProjectID:       1,
				WorkDescription: "wrote tests",
				HoursSpent:      tt.hours,
			})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
				assert.Empty(t, f.logs.ByID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), w.UserID)
			assert.Equal(t, tt.hours, w.HoursSpent)
		})
	}
}

func TestCreateWorkLogRequiresProjectAndDescription(t *testing.T) {
	f := newWorkLogFixture()

	_, err := f.svc.Create(context.Background(), 7, model.CreateWorkLogInput{ProjectID: 1, WorkDescription: "   "})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.Create(context.Background(), 7, model.CreateWorkLogInput{WorkDescription: "x"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateWorkLogChecksProjectAndPhase(t *testing.T) {
	f := newWorkLogFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 7, model.CreateWorkLogInput{ProjectID: 99, WorkDescription: "x"})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.svc.Create(ctx, 7, model.CreateWorkLogInput{ProjectID: 1, PhaseID: id(20), WorkDescription: "x"})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), MsgPhaseNotInProject)

	w, err := f.svc.Create(ctx, 7, model.CreateWorkLogInput{ProjectID: 1, PhaseID: id(10), WorkDescription: "x"})
	require.NoError(t, err)
	assert.Equal(t, id(10), w.PhaseID)
}

func TestCreateWorkLogInvalidatesAuthorStats(t *testing.T) {
	f := newWorkLogFixture()
	ctx := context.Background()

	_, err := f.svc.Stats(ctx, 7, model.DateRange{})
	require.NoError(t, err)
	require.Contains(t, f.cache.Entries, int64(7))

	_, err = f.svc.Create(ctx, 7, model.CreateWorkLogInput{ProjectID: 1, WorkDescription: "x"})
	require.NoError(t, err)

	assert.NotContains(t, f.cache.Entries, int64(7))
	assert.Equal(t, []int64{7}, f.cache.Invalidated)
}

func TestUpdateWorkLogOnlyByAuthor(t *testing.T) {
	f := newWorkLogFixture(model.WorkLog{ID: 1, UserID: 7, ProjectID: 1, WorkDescription: "a"})
	ctx := context.Background()

	_, err := f.svc.Update(ctx, 1, 8, model.UpdateWorkLogInput{WorkDescription: model.Some("b")})
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, "a", f.logs.ByID[1].WorkDescription)

	err = f.svc.Delete(ctx, 1, 8)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Contains(t, f.logs.ByID, int64(1))

	_, err = f.svc.Update(ctx, 404, 7, model.UpdateWorkLogInput{WorkDescription: model.Some("b")})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateWorkLogPartialSemantics(t *testing.T) {
	f := newWorkLogFixture(model.WorkLog{
		ID: 1, UserID: 7, ProjectID: 1, PhaseID: id(10),
		WorkDescription: "a", HoursSpent: hours(3), Notes: ptr("keep"),
	})
	ctx := context.Background()

	w, err := f.svc.Update(ctx, 1, 7, model.UpdateWorkLogInput{
		HoursSpent: model.Some(0.0),
		PhaseID:    model.Null[int64](),
	})
	require.NoError(t, err)

	assert.Equal(t, hours(0), w.HoursSpent)
	assert.Nil(t, w.PhaseID)
	assert.Equal(t, "a", w.WorkDescription, "absent members are unchanged")
	assert.Equal(t, ptr("keep"), w.Notes)
}

func TestUpdateWorkLogValidation(t *testing.T) {
	f := newWorkLogFixture(model.WorkLog{ID: 1, UserID: 7, ProjectID: 1, PhaseID: id(10), WorkDescription: "a"})
	ctx := context.Background()

	tests := []struct {
		name string
		in   model.UpdateWorkLogInput
		kind Kind
	}{
		{"empty body", model.UpdateWorkLogInput{}, KindValidation},
		{"hours over 24", model.UpdateWorkLogInput{HoursSpent: model.Some(24.5)}, KindValidation},
		{"null project", model.UpdateWorkLogInput{ProjectID: model.Null[int64]()}, KindValidation},
		{"null log date", model.UpdateWorkLogInput{LogDate: model.Null[model.Date]()}, KindValidation},
		{"blank description", model.UpdateWorkLogInput{WorkDescription: model.Some(" ")}, KindValidation},
		{"unknown project", model.UpdateWorkLogInput{ProjectID: model.Some(int64(99))}, KindNotFound},
		{"phase of another project", model.UpdateWorkLogInput{PhaseID: model.Some(int64(20))}, KindNotFound},
		{"project moved away from existing phase", model.UpdateWorkLogInput{ProjectID: model.Some(int64(2))}, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, 1, 7, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}

	w, err := f.svc.Update(ctx, 1, 7, model.UpdateWorkLogInput{
		ProjectID: model.Some(int64(2)),
		PhaseID:   model.Some(int64(20)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), w.ProjectID)
	assert.Equal(t, id(20), w.PhaseID)
}

func TestDeleteWorkLog(t *testing.T) {
	f := newWorkLogFixture(model.WorkLog{ID: 1, UserID: 7, ProjectID: 1, WorkDescription: "a"})
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, 1, 7))
	assert.Empty(t, f.logs.ByID)
	assert.Equal(t, []int64{7}, f.cache.Invalidated)

	assert.Equal(t, KindNotFound, KindOf(f.svc.Delete(ctx, 1, 7)))
}

func TestMyLogsScopesToCaller(t *testing.T) {
	f := newWorkLogFixture(
		model.WorkLog{ID: 1, UserID: 7, ProjectID: 1, HoursSpent: hours(2.5)},
		model.WorkLog{ID: 2, UserID: 7, ProjectID: 2},
		model.WorkLog{ID: 3, UserID: 8, ProjectID: 1, HoursSpent: hours(4)},
	)

	res, err := f.svc.MyLogs(context.Background(), 7, model.WorkLogFilter{UserID: id(8), PhaseID: id(10)})
	require.NoError(t, err)

	require.Len(t, res.WorkLogs, 2)
	assert.Equal(t, model.Hours(2.5), res.TotalHours)
	assert.Nil(t, res.User)

	last := f.logs.Filters[len(f.logs.Filters)-1]
	assert.Equal(t, id(7), last.UserID)
	assert.Nil(t, last.PhaseID)
}

func TestByUser(t *testing.T) {
	f := newWorkLogFixture(model.WorkLog{ID: 1, UserID: 1, ProjectID: 1, HoursSpent: hours(8)})
	require.NoError(t, f.users.Create(context.Background(), &model.User{Email: "e@x.io", FullName: "Eve", Role: "software_engineer"}))

	res, err := f.svc.ByUser(context.Background(), 1, model.WorkLogFilter{})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "Eve", res.User.FullName)
	assert.Equal(t, model.Hours(8), res.TotalHours)

	_, err = f.svc.ByUser(context.Background(), 99, model.WorkLogFilter{})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), MsgUserNotFound)
}

func TestStatsServedFromCache(t *testing.T) {
	f := newWorkLogFixture()
	f.logs.Report = &model.StatsReport{
		Stats:            model.WorkLogStats{TotalLogs: 3, TotalHours: 12},
		ProjectBreakdown: []model.ProjectHours{{ID: 1, ProjectName: "p", LogCount: 3, TotalHours: 12}},
	}
	ctx := context.Background()

	first, err := f.svc.Stats(ctx, 7, model.DateRange{})
	require.NoError(t, err)
	second, err := f.svc.Stats(ctx, 7, model.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.logs.StatsCalls)
}

func TestStatsComputedBeforeMutationIsNotCached(t *testing.T) {
	f := newWorkLogFixture()
	ctx := context.Background()

	// a log is written while the first aggregation is still running
	f.logs.OnStats = func() {
		f.logs.OnStats = nil
		_, err := f.svc.Create(ctx, 7, model.CreateWorkLogInput{ProjectID: 1, WorkDescription: "late"})
		require.NoError(t, err)
	}
	_, err := f.svc.Stats(ctx, 7, model.DateRange{})
	require.NoError(t, err)
	assert.NotContains(t, f.cache.Entries, int64(7))

	f.logs.Report = &model.StatsReport{Stats: model.WorkLogStats{TotalLogs: 1}}
	report, err := f.svc.Stats(ctx, 7, model.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Stats.TotalLogs)
	assert.Equal(t, 2, f.logs.StatsCalls)
}

func TestGetWorkLogNotFound(t *testing.T) {
	f := newWorkLogFixture()

	_, err := f.svc.Get(context.Background(), 1)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func ptr(s string) *string { return &s }
