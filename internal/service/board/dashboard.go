package board

import (
	"math"
	"sort"
	"time"

	"improvehub/internal/model"
)

// OverdueTask is an unfinished task whose deadline has passed.
type OverdueTask struct {
	ProjectID    string      `json:"projectId"`
	ProjectTitle string      `json:"projectTitle"`
	TaskID       string      `json:"taskId"`
	TaskName     string      `json:"taskName"`
	Responsible  string      `json:"responsible"`
	Deadline     *model.Date `json:"deadline"`
	DaysLate     int         `json:"daysLate"`
}

// MonthSummary counts recurrent demand cells for one calendar month.
type MonthSummary struct {
	OK            int `json:"ok"`
	Failed        int `json:"failed"`
	NotApplicable int `json:"notApplicable"`
	Pending       int `json:"pending"`
}

// Dashboard is the aggregated overview of every project.
type Dashboard struct {
	TotalProjects    int                         `json:"totalProjects"`
	ProjectsByStatus map[model.ProjectStatus]int `json:"projectsByStatus"`
	AverageProgress  float64                     `json:"averageProgress"`
	TotalTasks       int                         `json:"totalTasks"`
	DoneTasks        int                         `json:"doneTasks"`
	TasksByStatus    map[model.TaskStatus]int    `json:"tasksByStatus"`
	TasksByPhase     map[model.DMAICPhase]int    `json:"tasksByPhase"`
	OverdueTasks     []OverdueTask               `json:"overdueTasks"`
	Months           [12]MonthSummary            `json:"months"`
}

// BuildDashboard aggregates projects as of the calendar day of today.
func BuildDashboard(projects []*model.Project, today time.Time) Dashboard {
	d := Dashboard{
		TotalProjects:    len(projects),
		ProjectsByStatus: make(map[model.ProjectStatus]int, len(model.AllProjectStatuses)),
		TasksByStatus:    make(map[model.TaskStatus]int, len(model.AllTaskStatuses)),
		TasksByPhase:     make(map[model.DMAICPhase]int, len(model.AllPhases)),
		OverdueTasks:     []OverdueTask{},
	}
	for _, s := range model.AllProjectStatuses {
		d.ProjectsByStatus[s] = 0
	}
	for _, s := range model.AllTaskStatuses {
		d.TasksByStatus[s] = 0
	}
	for _, ph := range model.AllPhases {
		d.TasksByPhase[ph] = 0
	}

	day := model.NewDate(today)
	progressSum := 0
	for _, p := range projects {
		d.ProjectsByStatus[p.Status]++
		progressSum += p.Progress

		for _, a := range p.Activities {
			for _, t := range a.SubActivities {
				d.TotalTasks++
				d.TasksByStatus[t.Status]++
				d.TasksByPhase[t.DMAIC]++
				if t.Status == model.TaskDone {
					d.DoneTasks++
					continue
				}
				if t.Deadline != nil && !t.Deadline.IsZero() && t.Deadline.Before(day.Time) {
					d.OverdueTasks = append(d.OverdueTasks, OverdueTask{
						ProjectID:    p.ID,
						ProjectTitle: p.Title,
						TaskID:       t.ID,
						TaskName:     t.Name,
						Responsible:  t.Responsible,
						Deadline:     t.Deadline,
						DaysLate:     int(day.Sub(t.Deadline.Time).Hours() / 24),
					})
				}
			}
		}

		for _, rd := range p.RecurrentDemands {
			for i, m := range rd.Months {
				switch m {
				case model.MonthOK:
					d.Months[i].OK++
				case model.MonthFailed:
					d.Months[i].Failed++
				case model.MonthNotApplicable:
					d.Months[i].NotApplicable++
				default:
					d.Months[i].Pending++
				}
			}
		}
	}

	if len(projects) > 0 {
		d.AverageProgress = math.Round(10*float64(progressSum)/float64(len(projects))) / 10
	}
	sort.SliceStable(d.OverdueTasks, func(i, j int) bool {
		return d.OverdueTasks[i].DaysLate > d.OverdueTasks[j].DaysLate
	})
	return d
}
