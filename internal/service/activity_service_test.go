package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/internal/service/servicetest"
)

func TestRecordActivityIsIdempotent(t *testing.T) {
	store := servicetest.NewActivity()
	svc := NewActivityService(store, zap.NewNop())
	ctx := context.Background()

	e := model.ChangeEvent{
		EntityType: model.EntityWorkLog,
		EntityID:   5,
		Action:     model.ActionCreated,
		ProjectID:  1,
		UserID:     7,
		OccurredAt: time.Now(),
	}
	require.NoError(t, svc.Record(ctx, 100, e))
	require.NoError(t, svc.Record(ctx, 100, e))

	require.Len(t, store.Entries, 1)
	assert.Equal(t, int64(100), store.Entries[0].EventID)
	assert.Equal(t, "worklog", store.Entries[0].EntityType)
}

func TestRecordProjectDeletedDropsFeed(t *testing.T) {
	store := servicetest.NewActivity()
	svc := NewActivityService(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, 1, model.ChangeEvent{EntityType: model.EntityPhase, Action: model.ActionCreated, ProjectID: 1}))
	require.NoError(t, svc.Record(ctx, 2, model.ChangeEvent{EntityType: model.EntityPhase, Action: model.ActionCreated, ProjectID: 2}))
	require.NoError(t, svc.Record(ctx, 3, model.ChangeEvent{EntityType: model.EntityProject, Action: model.ActionDeleted, ProjectID: 1}))

	assert.Equal(t, []int64{1}, store.DroppedProjects)
	require.Len(t, store.Entries, 1)
	assert.Equal(t, int64(2), store.Entries[0].ProjectID)
}

func TestRecordSkipsEventsWithoutProject(t *testing.T) {
	store := servicetest.NewActivity()
	svc := NewActivityService(store, zap.NewNop())

	require.NoError(t, svc.Record(context.Background(), 1, model.ChangeEvent{EntityType: model.EntityWorkLog, Action: model.ActionCreated}))
	assert.Empty(t, store.Entries)
}
