package state

import (
	"context"
	"slices"
	"sync"

	"improvehub/internal/model"
	"improvehub/internal/reconcile"
	"improvehub/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// View is the screen the user is looking at.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewList      View = "list"
	ViewDetail    View = "detail"
)

// Remote mirrors mutations to the outside world.
type Remote interface {
	ProjectCreated(ctx context.Context, p *model.Project) error
	ProjectUpdated(ctx context.Context, p *model.Project) error
	ProjectDeleted(ctx context.Context, id string) error
	ActivityCreated(ctx context.Context, p *model.Project, a model.Activity) error
	TaskCreated(ctx context.Context, p *model.Project, a model.Activity, t model.SubActivity) error
}

// Snapshot is a point-in-time copy of the view state. The project pointers
// are shared with the controller and must not be modified.
type Snapshot struct {
	View       View             `json:"view"`
	SelectedID string           `json:"selectedId,omitempty"`
	Projects   []*model.Project `json:"projects"`
}

// Selected returns the selected project, or nil.
func (s Snapshot) Selected() *model.Project {
	if s.SelectedID == "" {
		return nil
	}
	for _, p := range s.Projects {
		if p.ID == s.SelectedID {
			return p
		}
	}
	return nil
}

func (s Snapshot) clone() Snapshot {
	s.Projects = slices.Clone(s.Projects)
	return s
}

func (s Snapshot) index(id string) int {
	return slices.IndexFunc(s.Projects, func(p *model.Project) bool { return p.ID == id })
}

// Controller owns the in-memory project collection and mediates every
// mutation through its durability policy.
type Controller struct {
	mu  sync.Mutex
	cur Snapshot

	remote  Remote
	policy  Policy
	tracker *Tracker
	newID   func() string
	logger  *zap.Logger
}

type Option func(*Controller)

// WithPolicy overrides the durability class of the given mutations.
func WithPolicy(p Policy) Option {
	return func(c *Controller) {
		for m, d := range p {
			c.policy[m] = d
		}
	}
}

// WithIDGenerator replaces the generator used for new projects, tasks and demands.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

func NewController(remote Remote, logger *zap.Logger, opts ...Option) *Controller {
	if remote == nil {
		remote = nopRemote{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		cur:     Snapshot{View: ViewDashboard, Projects: []*model.Project{}},
		remote:  remote,
		policy:  DefaultPolicy(),
		tracker: NewTracker(logger),
		newID:   uuid.NewString,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Background exposes the tracker running best-effort syncs.
func (c *Controller) Background() *Tracker {
	return c.tracker
}

// Close abandons in-flight background syncs.
func (c *Controller) Close() {
	c.tracker.Close()
}

// State returns a copy of the current view state.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur.clone()
}

// Projects returns the current collection in display order.
func (c *Controller) Projects() []*model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.cur.Projects)
}

// Project looks up a project by id.
func (c *Controller) Project(id string) (*model.Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.cur.index(id); i >= 0 {
		return c.cur.Projects[i], true
	}
	return nil, false
}

// ReplaceAll swaps in a freshly reconciled collection. The selection survives
// when the selected project is still present.
func (c *Controller) ReplaceAll(projects []*model.Project) {
	next := make([]*model.Project, 0, len(projects))
	for _, p := range projects {
		if p != nil {
			next = append(next, p)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.Projects = next
	if c.cur.SelectedID != "" && c.cur.index(c.cur.SelectedID) < 0 {
		c.cur.SelectedID = ""
		if c.cur.View == ViewDetail {
			c.cur.View = ViewList
		}
	}
}

// SelectProject switches to the detail view of id.
func (c *Controller) SelectProject(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur.index(id) < 0 {
		return ErrProjectNotFound
	}
	c.cur.SelectedID = id
	c.cur.View = ViewDetail
	return nil
}

// ClearSelection returns to the list view.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.SelectedID = ""
	c.cur.View = ViewList
}

// SetView switches between the dashboard and list views. The detail view is
// entered through SelectProject.
func (c *Controller) SetView(v View) error {
	if v != ViewDashboard && v != ViewList {
		return ErrInvalidView
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.View = v
	c.cur.SelectedID = ""
	return nil
}

// ApplyLocalMutation replaces the project with the same id without telling
// anyone.
func (c *Controller) ApplyLocalMutation(p *model.Project) (*model.Project, error) {
	stored := p.Clone()
	err := c.commit(context.Background(), MutationEditFields,
		func(s *Snapshot) error { return replace(s, stored) },
		func(ctx context.Context) error { return c.remote.ProjectUpdated(ctx, stored) },
	)
	return stored, err
}

// ApplyAndSync replaces the project with the same id and mirrors the update.
func (c *Controller) ApplyAndSync(ctx context.Context, p *model.Project) (*model.Project, error) {
	stored := p.Clone()
	err := c.commit(ctx, MutationUpdateProject,
		func(s *Snapshot) error { return replace(s, stored) },
		func(ctx context.Context) error { return c.remote.ProjectUpdated(ctx, stored) },
	)
	return stored, err
}

// EditProject applies fn to a copy of the current version of the project
// and stores the result without telling anyone. fn runs under the state lock.
func (c *Controller) EditProject(id string, fn func(p *model.Project)) (*model.Project, error) {
	return c.update(context.Background(), MutationEditFields, id, fn)
}

// UpdateProject applies fn to a copy of the current version of the project,
// stores it and mirrors the update. fn runs under the state lock.
func (c *Controller) UpdateProject(ctx context.Context, id string, fn func(p *model.Project)) (*model.Project, error) {
	return c.update(ctx, MutationUpdateProject, id, fn)
}

func (c *Controller) update(ctx context.Context, m Mutation, id string, fn func(p *model.Project)) (*model.Project, error) {
	var stored *model.Project
	err := c.commit(ctx, m,
		func(s *Snapshot) error {
			return edit(s, id, func(p *model.Project) error {
				fn(p)
				p.ID = id
				stored = p
				return nil
			})
		},
		func(ctx context.Context) error { return c.remote.ProjectUpdated(ctx, stored) },
	)
	return stored, err
}

// CreateProject mirrors a new project and prepends it to the collection. An
// empty id is filled in; progress starts from the project's own tasks.
func (c *Controller) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	stored := p.Clone()
	if stored.ID == "" {
		stored.ID = c.newID()
	}
	if stored.Status == "" {
		stored.Status = model.ProjectActive
	}
	stored.RecomputeProgress()

	err := c.commit(ctx, MutationCreateProject,
		func(s *Snapshot) error {
			if s.index(stored.ID) >= 0 {
				return ErrProjectExists
			}
			s.Projects = append([]*model.Project{stored}, s.Projects...)
			return nil
		},
		func(ctx context.Context) error { return c.remote.ProjectCreated(ctx, stored) },
	)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteProject removes the project and mirrors the deletion.
func (c *Controller) DeleteProject(ctx context.Context, id string) error {
	return c.commit(ctx, MutationDeleteProject,
		func(s *Snapshot) error {
			i := s.index(id)
			if i < 0 {
				return ErrProjectNotFound
			}
			s.Projects = slices.Delete(s.Projects, i, i+1)
			if s.SelectedID == id {
				s.SelectedID = ""
				s.View = ViewList
			}
			return nil
		},
		func(ctx context.Context) error { return c.remote.ProjectDeleted(ctx, id) },
	)
}

// AddActivity appends an empty activity to a project. Its id is the same
// stable key reconciliation derives from the project id and the name.
func (c *Controller) AddActivity(ctx context.Context, projectID, name string) (model.Activity, error) {
	var (
		stored   *model.Project
		activity model.Activity
	)
	err := c.commit(ctx, MutationCreateActivity,
		func(s *Snapshot) error {
			return edit(s, projectID, func(p *model.Project) error {
				for _, a := range p.Activities {
					if a.Name == name {
						return ErrActivityExists
					}
				}
				activity = model.Activity{ID: reconcile.ActivityID(projectID, name), Name: name, SubActivities: []model.SubActivity{}}
				p.Activities = append(p.Activities, activity)
				stored = p
				return nil
			})
		},
		func(ctx context.Context) error { return c.remote.ActivityCreated(ctx, stored, activity) },
	)
	return activity, err
}

// AddTask appends a task to an activity and recomputes the project progress.
func (c *Controller) AddTask(ctx context.Context, projectID, activityID string, task model.SubActivity) (model.SubActivity, error) {
	if task.ID == "" {
		task.ID = c.newID()
	}
	if task.Status == "" {
		task.Status = model.TaskNotStarted
	}
	if task.DMAIC == "" {
		task.DMAIC = model.PhaseDefine
	}

	var (
		stored   *model.Project
		activity model.Activity
	)
	err := c.commit(ctx, MutationCreateTask,
		func(s *Snapshot) error {
			return edit(s, projectID, func(p *model.Project) error {
				i := p.ActivityIndex(activityID)
				if i < 0 {
					return ErrActivityNotFound
				}
				p.Activities[i].SubActivities = append(p.Activities[i].SubActivities, task)
				p.RecomputeProgress()
				stored, activity = p, p.Activities[i]
				return nil
			})
		},
		func(ctx context.Context) error { return c.remote.TaskCreated(ctx, stored, activity, task) },
	)
	return task, err
}

// SetTaskStatus changes a task status and recomputes progress in the same
// state update.
func (c *Controller) SetTaskStatus(ctx context.Context, projectID, taskID string, status model.TaskStatus) (*model.Project, error) {
	var stored *model.Project
	err := c.commit(ctx, MutationTaskStatus,
		func(s *Snapshot) error {
			return edit(s, projectID, func(p *model.Project) error {
				i, j := p.TaskIndex(taskID)
				if i < 0 {
					return ErrTaskNotFound
				}
				p.Activities[i].SubActivities[j].Status = status
				p.RecomputeProgress()
				stored = p
				return nil
			})
		},
		func(ctx context.Context) error { return c.remote.ProjectUpdated(ctx, stored) },
	)
	return stored, err
}

// AddRecurrentDemand appends a demand with every month pending.
func (c *Controller) AddRecurrentDemand(ctx context.Context, projectID, theme string) (model.RecurrentDemand, error) {
	var stored *model.Project
	demand := model.NewRecurrentDemand(c.newID(), theme)
	err := c.commit(ctx, MutationRecurrentDemand,
		func(s *Snapshot) error {
			return edit(s, projectID, func(p *model.Project) error {
				p.RecurrentDemands = append(p.RecurrentDemands, demand)
				stored = p
				return nil
			})
		},
		func(ctx context.Context) error { return c.remote.ProjectUpdated(ctx, stored) },
	)
	return demand, err
}

// SetMonthStatus sets one month (1 = January) of a recurrent demand.
func (c *Controller) SetMonthStatus(ctx context.Context, projectID, demandID string, month int, status model.MonthStatus) (*model.Project, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	var stored *model.Project
	err := c.commit(ctx, MutationRecurrentDemand,
		func(s *Snapshot) error {
			return edit(s, projectID, func(p *model.Project) error {
				i := p.DemandIndex(demandID)
				if i < 0 {
					return ErrDemandNotFound
				}
				p.RecurrentDemands[i].Months[month-1] = status
				stored = p
				return nil
			})
		},
		func(ctx context.Context) error { return c.remote.ProjectUpdated(ctx, stored) },
	)
	return stored, err
}

// commit runs one mutation under its durability class. apply edits a copy of
// the state and may be called twice for Confirmed mutations, so it must only
// depend on its argument and the values it closes over.
func (c *Controller) commit(ctx context.Context, m Mutation, apply func(*Snapshot) error, mirror func(context.Context) error) error {
	d := c.policy.For(m)
	log := c.logger.With(zap.String("mutation", string(m)), zap.Stringer("durability", d))

	if d == Confirmed {
		c.mu.Lock()
		trial := c.cur.clone()
		err := apply(&trial)
		c.mu.Unlock()
		if err != nil {
			metrics.IncrementMutation(string(m), d.String(), "rejected")
			return err
		}

		if err := mirror(ctx); err != nil {
			log.Warn("Remote sync failed, mutation not applied", zap.Error(err))
			metrics.IncrementMutation(string(m), d.String(), "rejected")
			return &RemoteError{Op: m, Durability: d, Err: err}
		}

		c.mu.Lock()
		next := c.cur.clone()
		err = apply(&next)
		if err == nil {
			c.cur = next
		}
		c.mu.Unlock()
		if err != nil {
			log.Error("Mutation confirmed remotely but no longer applies locally", zap.Error(err))
			metrics.IncrementMutation(string(m), d.String(), "diverged")
			return err
		}
		metrics.IncrementMutation(string(m), d.String(), "applied")
		return nil
	}

	c.mu.Lock()
	prev := c.cur
	next := prev.clone()
	if err := apply(&next); err != nil {
		c.mu.Unlock()
		metrics.IncrementMutation(string(m), d.String(), "rejected")
		return err
	}
	c.cur = next
	c.mu.Unlock()

	switch d {
	case LocalOnly:
		metrics.IncrementMutation(string(m), d.String(), "applied")
		return nil

	case BestEffort:
		c.tracker.Go(string(m), mirror)
		metrics.IncrementMutation(string(m), d.String(), "applied")
		return nil

	case Compensated:
		if err := mirror(ctx); err != nil {
			c.mu.Lock()
			restored := c.cur.clone()
			revert(&restored, prev, next)
			c.cur = restored
			c.mu.Unlock()
			log.Warn("Remote sync failed, local change reverted", zap.Error(err))
			metrics.IncrementMutation(string(m), d.String(), "rolled_back")
			return &RemoteError{Op: m, Durability: d, Err: err}
		}

	default:
		if err := mirror(ctx); err != nil {
			log.Warn("Remote sync failed, local change kept", zap.Error(err))
			metrics.IncrementMutation(string(m), d.String(), "diverged")
			return &RemoteError{Op: m, Durability: d, Err: err}
		}
	}

	metrics.IncrementMutation(string(m), d.String(), "applied")
	return nil
}

// revert undoes on cur what turned prev into next. Changes committed by
// other mutations since then are kept: a removed project goes back in front
// of its old successor, a replaced or added project is only reverted while
// cur still holds the version this mutation stored, and the selection only
// while nobody has changed it.
func revert(cur *Snapshot, prev, next Snapshot) {
	for i, p := range prev.Projects {
		j := next.index(p.ID)
		switch {
		case j < 0:
			if cur.index(p.ID) >= 0 {
				continue
			}
			at := len(cur.Projects)
			for _, after := range prev.Projects[i+1:] {
				if k := cur.index(after.ID); k >= 0 {
					at = k
					break
				}
			}
			cur.Projects = slices.Insert(cur.Projects, at, p)
		case next.Projects[j] != p:
			if k := cur.index(p.ID); k >= 0 && cur.Projects[k] == next.Projects[j] {
				cur.Projects[k] = p
			}
		}
	}
	for _, p := range next.Projects {
		if prev.index(p.ID) >= 0 {
			continue
		}
		if k := cur.index(p.ID); k >= 0 && cur.Projects[k] == p {
			cur.Projects = slices.Delete(cur.Projects, k, k+1)
		}
	}

	if cur.SelectedID == next.SelectedID && cur.View == next.View &&
		(prev.SelectedID == "" || cur.index(prev.SelectedID) >= 0) {
		cur.SelectedID = prev.SelectedID
		cur.View = prev.View
	}
}

func replace(s *Snapshot, p *model.Project) error {
	i := s.index(p.ID)
	if i < 0 {
		return ErrProjectNotFound
	}
	s.Projects[i] = p
	return nil
}

// edit replaces the project with a modified clone.
func edit(s *Snapshot, id string, fn func(p *model.Project) error) error {
	i := s.index(id)
	if i < 0 {
		return ErrProjectNotFound
	}
	p := s.Projects[i].Clone()
	if err := fn(p); err != nil {
		return err
	}
	s.Projects[i] = p
	return nil
}

type nopRemote struct{}

func (nopRemote) ProjectCreated(context.Context, *model.Project) error { return nil }
func (nopRemote) ProjectUpdated(context.Context, *model.Project) error { return nil }
func (nopRemote) ProjectDeleted(context.Context, string) error         { return nil }
func (nopRemote) ActivityCreated(context.Context, *model.Project, model.Activity) error { return nil }
func (nopRemote) TaskCreated(context.Context, *model.Project, model.Activity, model.SubActivity) error {
	return nil
}
