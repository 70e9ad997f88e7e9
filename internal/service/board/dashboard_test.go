package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"improvehub/internal/model"
)

func TestBuildDashboard(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	rd := model.NewRecurrentDemand("d1", "5S")
	rd.Months[0] = model.MonthOK
	rd.Months[1] = model.MonthFailed
	rd.Months[2] = model.MonthNotApplicable

	projects := []*model.Project{
		{
			ID: "p1", Title: "Reduce Scrap", Status: model.ProjectActive, Progress: 50,
			Activities: []model.Activity{{
				ID: "a1", Name: "Mapping",
				SubActivities: []model.SubActivity{
					{ID: "t1", Name: "Done late", Status: model.TaskDone, DMAIC: model.PhaseMeasure, Deadline: model.ParseDate("2026-01-01")},
					{ID: "t2", Name: "Late", Status: model.TaskInProgress, DMAIC: model.PhaseAnalyze, Deadline: model.ParseDate("2026-03-07")},
					{ID: "t3", Name: "Due today", Status: model.TaskNotStarted, DMAIC: model.PhaseAnalyze, Deadline: model.ParseDate("2026-03-10")},
					{ID: "t4", Name: "Very late", Status: model.TaskBlocked, DMAIC: model.PhaseDefine, Deadline: model.ParseDate("2026-02-08")},
				},
			}},
			RecurrentDemands: []model.RecurrentDemand{rd},
		},
		{ID: "p2", Status: model.ProjectOnHold, Progress: 25},
		{ID: "p3", Status: model.ProjectCompleted, Progress: 100},
	}

	d := BuildDashboard(projects, today)

	assert.Equal(t, 3, d.TotalProjects)
	assert.Equal(t, 1, d.ProjectsByStatus[model.ProjectActive])
	assert.Equal(t, 1, d.ProjectsByStatus[model.ProjectOnHold])
	assert.Equal(t, 1, d.ProjectsByStatus[model.ProjectCompleted])
	assert.InDelta(t, 58.3, d.AverageProgress, 0.001)

	assert.Equal(t, 4, d.TotalTasks)
	assert.Equal(t, 1, d.DoneTasks)
	assert.Equal(t, 2, d.TasksByPhase[model.PhaseAnalyze])
	assert.Equal(t, 0, d.TasksByPhase[model.PhaseControl])
	assert.Equal(t, 1, d.TasksByStatus[model.TaskBlocked])

	require.Len(t, d.OverdueTasks, 2)
	assert.Equal(t, "t4", d.OverdueTasks[0].TaskID)
	assert.Equal(t, 30, d.OverdueTasks[0].DaysLate)
	assert.Equal(t, "t2", d.OverdueTasks[1].TaskID)
	assert.Equal(t, 3, d.OverdueTasks[1].DaysLate)

	assert.Equal(t, MonthSummary{OK: 1}, d.Months[0])
	assert.Equal(t, MonthSummary{Failed: 1}, d.Months[1])
	assert.Equal(t, MonthSummary{NotApplicable: 1}, d.Months[2])
	assert.Equal(t, MonthSummary{Pending: 1}, d.Months[11])
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := BuildDashboard(nil, time.Now())
	assert.Equal(t, 0, d.TotalProjects)
	assert.Zero(t, d.AverageProgress)
	assert.NotNil(t, d.OverdueTasks)
}

func TestBuildDashboard_ClearedDeadlineIsNotOverdue(t *testing.T) {
	projects := []*model.Project{{
		ID:     "p1",
		Status: model.ProjectActive,
		Activities: []model.Activity{{
			ID:   "a1",
			Name: "Mapping",
			SubActivities: []model.SubActivity{
				{ID: "t1", Status: model.TaskInProgress, DMAIC: model.PhaseDefine, Deadline: &model.Date{}},
			},
		}},
	}}

	d := BuildDashboard(projects, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, d.OverdueTasks)
}
