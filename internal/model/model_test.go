package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"Concluído":    TaskDone,
		"concluido":    TaskDone,
		"DONE":         TaskDone,
		"Não Iniciado": TaskNotStarted,
		"nao_iniciado": TaskNotStarted,
		"in-progress":  TaskInProgress,
		"Em andamento": TaskInProgress,
		"Bloqueado":    TaskBlocked,
	}
	for in, want := range cases {
		got, ok := ParseTaskStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ParseTaskStatus("???")
	assert.False(t, ok)
	assert.Equal(t, TaskNotStarted, got)
}

func TestParseProjectStatus(t *testing.T) {
	got, ok := ParseProjectStatus("em espera")
	assert.True(t, ok)
	assert.Equal(t, ProjectOnHold, got)

	got, ok = ParseProjectStatus("")
	assert.False(t, ok)
	assert.Equal(t, ProjectActive, got)
}

func TestParseDMAICPhaseAndMonthStatus(t *testing.T) {
	phase, _ := ParseDMAICPhase("Analyze")
	assert.Equal(t, PhaseAnalyze, phase)
	phase, ok := ParseDMAICPhase("")
	assert.False(t, ok)
	assert.Equal(t, PhaseDefine, phase)

	month, _ := ParseMonthStatus("n/a")
	assert.Equal(t, MonthNotApplicable, month)
	month, ok = ParseMonthStatus("whatever")
	assert.False(t, ok)
	assert.Equal(t, MonthPending, month)
}

func TestRecomputeProgress(t *testing.T) {
	p := &Project{Progress: 37}
	assert.False(t, p.RecomputeProgress())
	assert.Equal(t, 37, p.Progress, "no tasks keeps the supplied value")

	p.Activities = []Activity{{
		ID: "a1",
		SubActivities: []SubActivity{
			{ID: "t1", Status: TaskDone},
			{ID: "t2", Status: TaskInProgress},
			{ID: "t3", Status: TaskNotStarted},
		},
	}}
	assert.True(t, p.RecomputeProgress())
	assert.Equal(t, 33, p.Progress)

	p.Activities[0].SubActivities[1].Status = TaskDone
	p.RecomputeProgress()
	assert.Equal(t, 67, p.Progress)
}

func TestClone_IsDeep(t *testing.T) {
	p := &Project{
		ID:        "p1",
		StartDate: ParseDate("2026-03-01"),
		Activities: []Activity{{
			ID:            "a1",
			SubActivities: []SubActivity{{ID: "t1", Deadline: ParseDate("2026-04-01")}},
		}},
		RecurrentDemands: []RecurrentDemand{NewRecurrentDemand("d1", "5S")},
	}

	c := p.Clone()
	c.Activities[0].SubActivities[0].Status = TaskDone
	c.Activities[0].SubActivities[0].Deadline.Time = c.Activities[0].SubActivities[0].Deadline.AddDate(1, 0, 0)
	c.RecurrentDemands[0].Months[0] = MonthOK
	c.StartDate.Time = c.StartDate.AddDate(0, 1, 0)

	assert.Empty(t, p.Activities[0].SubActivities[0].Status)
	assert.Equal(t, "2026-04-01", p.Activities[0].SubActivities[0].Deadline.String())
	assert.Equal(t, MonthPending, p.RecurrentDemands[0].Months[0])
	assert.Equal(t, "2026-03-01", p.StartDate.String())
}

func TestDateJSON(t *testing.T) {
	for _, in := range []string{"2026-05-04", "2026-05-04T10:00:00Z", "04/05/2026", "2026-05-04 08:00:00"} {
		d := ParseDate(in)
		require.NotNil(t, d, in)
		assert.Equal(t, "2026-05-04", d.String(), in)
	}
	assert.Nil(t, ParseDate("soon"))

	b, err := json.Marshal(SubActivity{ID: "t1", Deadline: ParseDate("2026-05-04")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"deadline":"2026-05-04"`)

	var task SubActivity
	require.NoError(t, json.Unmarshal(b, &task))
	assert.Equal(t, "2026-05-04", task.Deadline.String())
}

func TestDateJSON_RejectsUnparseableAndNeverWritesZero(t *testing.T) {
	var task SubActivity
	err := json.Unmarshal([]byte(`{"id":"t1","deadline":"next tuesday"}`), &task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "next tuesday")

	var cleared SubActivity
	require.NoError(t, json.Unmarshal([]byte(`{"id":"t1","deadline":""}`), &cleared))
	b, err := json.Marshal(cleared)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "0001-01-01")
	assert.Contains(t, string(b), `"deadline":null`)
}

func TestPasswordNeverSerialised(t *testing.T) {
	b, err := json.Marshal(UserProfile{ID: "1", Username: "ana", Password: "x", Role: "admin"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
}
