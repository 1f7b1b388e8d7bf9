package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worklog/internal/model"
	"worklog/pkg/mq"
)

type recordedEvent struct {
	id int64
	e  model.ChangeEvent
}

type fakeRecorder struct {
	got []recordedEvent
	err error
}

func (f *fakeRecorder) Record(_ context.Context, id int64, e model.ChangeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, recordedEvent{id: id, e: e})
	return nil
}

type memDeduper struct {
	held     map[string]bool
	released []string
}

func (d *memDeduper) AcquireOnce(_ context.Context, handler, id string) bool {
	key := handler + ":" + id
	if d.held[key] {
		return false
	}
	d.held[key] = true
	return true
}

func (d *memDeduper) Release(_ context.Context, handler, id string) {
	key := handler + ":" + id
	delete(d.held, key)
	d.released = append(d.released, key)
}

func delivery(t *testing.T, id string, e model.ChangeEvent) mq.Delivery {
	t.Helper()
	body, err := json.Marshal(e)
	require.NoError(t, err)
	return mq.Delivery{RoutingKey: e.RoutingKey(), MessageID: id, Body: body}
}

func TestActivityHandlerSkipsDuplicates(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewActivityHandler(rec, &memDeduper{held: map[string]bool{}}, zap.NewNop())
	d := delivery(t, "12", model.ChangeEvent{EntityType: "worklog", Action: "created", ProjectID: 3, EntityID: 9})

	require.NoError(t, h.Handle(context.Background(), d))
	require.NoError(t, h.Handle(context.Background(), d))

	require.Len(t, rec.got, 1)
	assert.Equal(t, int64(12), rec.got[0].id)
	assert.Equal(t, int64(3), rec.got[0].e.ProjectID)
}

func TestActivityHandlerReleasesOnFailure(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	dd := &memDeduper{held: map[string]bool{}}
	h := NewActivityHandler(rec, dd, zap.NewNop())

	err := h.Handle(context.Background(), delivery(t, "5", model.ChangeEvent{EntityType: "phase", Action: "updated", ProjectID: 1}))
	require.Error(t, err)
	assert.Equal(t, []string{"project_activity:5"}, dd.released)
	assert.Empty(t, dd.held)
}

func TestActivityHandlerRejectsBadInput(t *testing.T) {
	h := NewActivityHandler(&fakeRecorder{}, nil, zap.NewNop())

	assert.Error(t, h.Handle(context.Background(), mq.Delivery{MessageID: "abc", Body: []byte(`{}`)}))
	assert.Error(t, h.Handle(context.Background(), mq.Delivery{MessageID: "1", Body: []byte(`{`)}))
}

func TestRouterDispatch(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewActivityHandler(rec, nil, zap.NewNop())
	r := NewRouter(zap.NewNop())
	for _, key := range h.RoutingKeys() {
		r.Register(key, h.Handle)
	}

	assert.Len(t, r.RoutingKeys(), 9)
	assert.Contains(t, r.RoutingKeys(), "project.deleted")

	require.NoError(t, r.Handle(context.Background(), delivery(t, "1", model.ChangeEvent{EntityType: "project", Action: "created", ProjectID: 1})))
	require.NoError(t, r.Handle(context.Background(), mq.Delivery{RoutingKey: "user.created", MessageID: "2"}))
	assert.Len(t, rec.got, 1)
}
