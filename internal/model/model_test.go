package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldDistinguishesAbsentNullAndValue(t *testing.T) {
	var in UpdateWorkLogInput
	require.NoError(t, json.Unmarshal([]byte(`{"hours_spent":0,"notes":null}`), &in))

	assert.True(t, in.HoursSpent.Set)
	assert.False(t, in.HoursSpent.Null)
	assert.Equal(t, 0.0, in.HoursSpent.Value)

	assert.True(t, in.Notes.Set)
	assert.True(t, in.Notes.Null)
	assert.Nil(t, in.Notes.Ptr())

	assert.False(t, in.ProjectID.Set)
	assert.False(t, in.Empty())
}

func TestUpdateInputEmpty(t *testing.T) {
	var in UpdateWorkLogInput
	require.NoError(t, json.Unmarshal([]byte(`{"unknown":1}`), &in))
	assert.True(t, in.Empty())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &d))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T22:10:00Z"`), &d))
	assert.Equal(t, "2024-03-05", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"05/03/2024"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20240305`), &d))
}

func TestDateFromDB(t *testing.T) {
	assert.Nil(t, DateFromDB(nil))
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", DateFromDB(&ts).String())
	assert.Nil(t, DateArg(nil))
	assert.Equal(t, "2024-01-02", DateArg(DateFromDB(&ts)))
}

func TestHoursFormatting(t *testing.T) {
	out, err := json.Marshal(WorkLogStats{TotalLogs: 3, TotalHours: 5.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_logs":3,"total_hours":"5.50","projects_worked_on":0,"days_logged":0}`, string(out))

	var back WorkLogStats
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, Hours(5.5), back.TotalHours)
}

func TestSumHoursSkipsNull(t *testing.T) {
	two, three := 2.0, 3.5
	logs := []WorkLogView{
		{WorkLog: WorkLog{HoursSpent: &two}},
		{WorkLog: WorkLog{}},
		{WorkLog: WorkLog{HoursSpent: &three}},
	}
	assert.Equal(t, "5.50", SumHours(logs).String())
}

func TestChangeEventRoutingKey(t *testing.T) {
	e := ChangeEvent{EntityType: EntityWorkLog, Action: ActionDeleted}
	assert.Equal(t, "worklog.deleted", e.RoutingKey())
}

func TestUserJSONHidesHash(t *testing.T) {
	out, err := json.Marshal(User{ID: 1, Email: "a@b.co", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.NotContains(t, string(out), "password")
}
