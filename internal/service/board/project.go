package board

import (
	"strings"

	"improvehub/internal/model"
)

// ProjectInput is the editable part of a project as submitted by the form.
// Enum fields are parsed leniently.
type ProjectInput struct {
	ID            string `json:"id"`
	Title         string `json:"title" binding:"required"`
	Category      string `json:"category"`
	Justification string `json:"justification"`
	Objective     string `json:"objective"`
	Benefits      string `json:"benefits"`
	Leader        string `json:"leader"`
	StartDate     string `json:"startDate"`
	Status        string `json:"status"`
	Progress      *int   `json:"progress"`
}

// NewProject builds a project with no activities.
func (in ProjectInput) NewProject() *model.Project {
	p := &model.Project{
		ID:               strings.TrimSpace(in.ID),
		Activities:       []model.Activity{},
		RecurrentDemands: []model.RecurrentDemand{},
	}
	in.ApplyTo(p)
	return p
}

// Replace returns a copy of cur with every editable field taken from in.
// Activities and recurrent demands are kept.
func (in ProjectInput) Replace(cur *model.Project) *model.Project {
	p := cur.Clone()
	in.ApplyTo(p)
	return p
}

// ApplyTo overwrites the editable fields of p in place.
func (in ProjectInput) ApplyTo(p *model.Project) {
	p.Title = strings.TrimSpace(in.Title)
	p.Category = in.Category
	p.Justification = in.Justification
	p.Objective = in.Objective
	p.Benefits = in.Benefits
	p.Leader = in.Leader
	p.StartDate = model.ParseDate(in.StartDate)
	p.Status, _ = model.ParseProjectStatus(in.Status)
	if in.Progress != nil {
		p.Progress = clampProgress(*in.Progress)
	}
}

// ProjectPatch edits single fields of a project. Nil fields are left alone.
type ProjectPatch struct {
	Title         *string `json:"title"`
	Category      *string `json:"category"`
	Justification *string `json:"justification"`
	Objective     *string `json:"objective"`
	Benefits      *string `json:"benefits"`
	Leader        *string `json:"leader"`
	StartDate     *string `json:"startDate"`
	Status        *string `json:"status"`
	Progress      *int    `json:"progress"`
}

// Apply returns a patched copy of cur.
func (pt ProjectPatch) Apply(cur *model.Project) *model.Project {
	p := cur.Clone()
	pt.ApplyTo(p)
	return p
}

// ApplyTo patches p in place.
func (pt ProjectPatch) ApplyTo(p *model.Project) {
	if pt.Title != nil {
		p.Title = strings.TrimSpace(*pt.Title)
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Justification != nil {
		p.Justification = *pt.Justification
	}
	if pt.Objective != nil {
		p.Objective = *pt.Objective
	}
	if pt.Benefits != nil {
		p.Benefits = *pt.Benefits
	}
	if pt.Leader != nil {
		p.Leader = *pt.Leader
	}
	if pt.StartDate != nil {
		p.StartDate = model.ParseDate(*pt.StartDate)
	}
	if pt.Status != nil {
		p.Status, _ = model.ParseProjectStatus(*pt.Status)
	}
	if pt.Progress != nil {
		p.Progress = clampProgress(*pt.Progress)
	}
}

// TaskInput is a new task as submitted by the form.
type TaskInput struct {
	Name        string `json:"name" binding:"required"`
	Responsible string `json:"responsible"`
	Status      string `json:"status"`
	DMAIC       string `json:"dmaic"`
	Deadline    string `json:"deadline"`
}

func (in TaskInput) SubActivity() model.SubActivity {
	status, _ := model.ParseTaskStatus(in.Status)
	phase, _ := model.ParseDMAICPhase(in.DMAIC)
	return model.SubActivity{
		Name:        strings.TrimSpace(in.Name),
		Responsible: in.Responsible,
		Status:      status,
		DMAIC:       phase,
		Deadline:    model.ParseDate(in.Deadline),
	}
}

func clampProgress(v int) int {
	return min(max(v, 0), 100)
}
