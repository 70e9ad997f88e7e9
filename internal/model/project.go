package model

import "math"

// Project is a continuous-improvement project as shown on the dashboard.
// Values stored in the view state are never mutated in place: mutate a Clone.
type Project struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Category         string            `json:"category"`
	Justification    string            `json:"justification"`
	Objective        string            `json:"objective"`
	Benefits         string            `json:"benefits"`
	Leader           string            `json:"leader"`
	StartDate        *Date             `json:"startDate,omitempty"`
	Status           ProjectStatus     `json:"status"`
	Progress         int               `json:"progress"`
	Activities       []Activity        `json:"activities"`
	RecurrentDemands []RecurrentDemand `json:"recurrentDemands"`
}

// Activity groups tasks that share a label in the source data.
type Activity struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	SubActivities []SubActivity `json:"subActivities"`
}

// SubActivity is a single task.
type SubActivity struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Responsible string     `json:"responsible"`
	Status      TaskStatus `json:"status"`
	DMAIC       DMAICPhase `json:"dmaic"`
	Deadline    *Date      `json:"deadline,omitempty"`
}

// RecurrentDemand is a routine checked once per calendar month.
// Months[0] is January.
type RecurrentDemand struct {
	ID     string          `json:"id"`
	Theme  string          `json:"theme"`
	Months [12]MonthStatus `json:"months"`
}

// NewRecurrentDemand returns a demand with every month pending.
func NewRecurrentDemand(id, theme string) RecurrentDemand {
	d := RecurrentDemand{ID: id, Theme: theme}
	for i := range d.Months {
		d.Months[i] = MonthPending
	}
	return d
}

// Clone returns a deep copy.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	if p.StartDate != nil {
		sd := *p.StartDate
		c.StartDate = &sd
	}
	c.Activities = make([]Activity, len(p.Activities))
	for i, a := range p.Activities {
		c.Activities[i] = a
		c.Activities[i].SubActivities = make([]SubActivity, len(a.SubActivities))
		for j, t := range a.SubActivities {
			if t.Deadline != nil {
				dl := *t.Deadline
				t.Deadline = &dl
			}
			c.Activities[i].SubActivities[j] = t
		}
	}
	c.RecurrentDemands = append([]RecurrentDemand(nil), p.RecurrentDemands...)
	if c.RecurrentDemands == nil {
		c.RecurrentDemands = []RecurrentDemand{}
	}
	return &c
}

// TaskCounts returns the number of tasks and how many of them are done.
func (p *Project) TaskCounts() (total, done int) {
	for _, a := range p.Activities {
		for _, t := range a.SubActivities {
			total++
			if t.Status == TaskDone {
				done++
			}
		}
	}
	return total, done
}

// RecomputeProgress sets Progress to round(100*done/total). With no tasks the
// current value is left alone and false is returned.
func (p *Project) RecomputeProgress() bool {
	total, done := p.TaskCounts()
	if total == 0 {
		return false
	}
	p.Progress = int(math.Round(100 * float64(done) / float64(total)))
	return true
}

// ActivityIndex returns the index of the activity with the given id, or -1.
func (p *Project) ActivityIndex(id string) int {
	for i := range p.Activities {
		if p.Activities[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskIndex locates a task by id across all activities.
func (p *Project) TaskIndex(taskID string) (activity, task int) {
	for i := range p.Activities {
		for j := range p.Activities[i].SubActivities {
			if p.Activities[i].SubActivities[j].ID == taskID {
				return i, j
			}
		}
	}
	return -1, -1
}

// DemandIndex returns the index of the recurrent demand with the given id, or -1.
func (p *Project) DemandIndex(id string) int {
	for i := range p.RecurrentDemands {
		if p.RecurrentDemands[i].ID == id {
			return i
		}
	}
	return -1
}
