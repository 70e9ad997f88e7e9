package reconcile

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"improvehub/internal/model"
)

// activityNamespace seeds the name-based activity keys.
var activityNamespace = uuid.MustParse("6f1c4a52-9d0e-4c1b-8a57-3e2f9b7d4c10")

// Stats summarises one reconciliation pass.
type Stats struct {
	Projects       int `json:"projects"`
	Tasks          int `json:"tasks"`
	OrphanDemands  int `json:"orphanDemands"`
	GeneratedIDs   int `json:"generatedIds"`
	SharedTitleHit int `json:"sharedTitleHits"`
	// DuplicateIDs counts project rows dropped because an earlier row had the same id.
	DuplicateIDs int `json:"duplicateIds"`
}

// Reconciler maps raw project and demand rows onto the project graph.
// It never fails: anything malformed degrades to a default.
type Reconciler struct {
	newID  func() string
	logger *zap.Logger
}

type Option func(*Reconciler)

// WithIDGenerator replaces the random id source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Reconciler) { r.newID = fn }
}

func New(logger *zap.Logger, opts ...Option) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reconciler{
		newID:  uuid.NewString,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ActivityID derives the key of the activity named name inside project projectID.
// The same pair always yields the same key, and the key is independent of how
// the label is displayed.
func ActivityID(projectID, name string) string {
	return uuid.NewSHA1(activityNamespace, []byte(projectID+"\x00"+name)).String()
}

type resolvedDemand struct {
	ref string
	row Row
}

// Reconcile runs a single synchronous pass over already fetched rows.
func (r *Reconciler) Reconcile(projectRows, demandRows []Row) ([]*model.Project, Stats) {
	var stats Stats

	demands := make([]resolvedDemand, len(demandRows))
	for i, row := range demandRows {
		ref, _ := row.String(DemandProjectRef)
		demands[i] = resolvedDemand{ref: ref, row: row}
	}

	projects := make([]*model.Project, 0, len(projectRows))
	titles := make(map[string]int, len(projectRows))
	seen := make(map[string]struct{}, len(projectRows))
	var duplicates []string
	for _, row := range projectRows {
		p, generated := r.project(row)
		if generated {
			stats.GeneratedIDs++
		}
		// first row wins; ids must be unique in the collection
		if _, dup := seen[p.ID]; dup {
			stats.DuplicateIDs++
			duplicates = append(duplicates, p.ID)
			continue
		}
		seen[p.ID] = struct{}{}
		if p.Title != "" {
			titles[p.Title]++
		}
		projects = append(projects, p)
	}

	matched := make([]bool, len(demands))
	for _, p := range projects {
		var own []Row
		for i, d := range demands {
			if d.ref == "" {
				continue
			}
			if d.ref == p.ID || d.ref == p.Title {
				// title references attach to every project sharing the title
				if d.ref != p.ID && titles[p.Title] > 1 {
					stats.SharedTitleHit++
				}
				own = append(own, d.row)
				matched[i] = true
			}
		}

		p.Activities = r.group(p.ID, own)
		p.RecomputeProgress()

		total, _ := p.TaskCounts()
		stats.Tasks += total
	}

	for _, m := range matched {
		if !m {
			stats.OrphanDemands++
		}
	}
	stats.Projects = len(projects)

	if len(duplicates) > 0 {
		r.logger.Warn("Project rows with a repeated id dropped",
			zap.Int("count", len(duplicates)),
			zap.Strings("ids", duplicates),
		)
	}
	if stats.SharedTitleHit > 0 {
		r.logger.Warn("Demands attached by a title shared between projects",
			zap.Int("hits", stats.SharedTitleHit),
		)
	}
	r.logger.Debug("Reconciliation finished",
		zap.Int("projects", stats.Projects),
		zap.Int("tasks", stats.Tasks),
		zap.Int("orphan_demands", stats.OrphanDemands),
		zap.Int("generated_ids", stats.GeneratedIDs),
	)

	return projects, stats
}

func (r *Reconciler) project(row Row) (*model.Project, bool) {
	generated := false
	id, ok := row.String(ProjectExternalID)
	if !ok {
		id, ok = row.String(ProjectID)
	}
	if !ok {
		id = r.newID()
		generated = true
	}

	status, _ := model.ParseProjectStatus(row.StringOr(ProjectStatus, ""))

	p := &model.Project{
		ID:               id,
		Title:            row.StringOr(ProjectTitle, ""),
		Category:         row.StringOr(ProjectCategory, ""),
		Justification:    row.StringOr(ProjectReason, ""),
		Objective:        row.StringOr(ProjectObjective, ""),
		Benefits:         row.StringOr(ProjectBenefits, ""),
		Leader:           row.StringOr(ProjectLeader, ""),
		Status:           status,
		Activities:       []model.Activity{},
		RecurrentDemands: r.recurrentDemands(row),
	}
	if s, ok := row.String(ProjectStartDate); ok {
		p.StartDate = model.ParseDate(s)
	}
	if n, ok := row.Number(ProjectProgress); ok {
		p.Progress = int(math.Round(n))
	}
	return p, generated
}

// group collapses demand rows by label, keeping first-occurrence order.
func (r *Reconciler) group(projectID string, rows []Row) []model.Activity {
	activities := []model.Activity{}
	index := make(map[string]int)

	for _, row := range rows {
		name := row.StringOr(DemandGroup, DefaultActivityName)

		i, ok := index[name]
		if !ok {
			activities = append(activities, model.Activity{
				ID:            ActivityID(projectID, name),
				Name:          name,
				SubActivities: []model.SubActivity{},
			})
			i = len(activities) - 1
			index[name] = i
		}
		activities[i].SubActivities = append(activities[i].SubActivities, r.task(row))
	}
	return activities
}

func (r *Reconciler) task(row Row) model.SubActivity {
	id, ok := row.String(DemandID)
	if !ok {
		id = r.newID()
	}
	status, _ := model.ParseTaskStatus(row.StringOr(DemandStatus, ""))
	phase, _ := model.ParseDMAICPhase(row.StringOr(DemandPhase, ""))

	t := model.SubActivity{
		ID:          id,
		Name:        row.StringOr(DemandTaskName, ""),
		Responsible: row.StringOr(DemandResponsible, ""),
		Status:      status,
		DMAIC:       phase,
	}
	if s, ok := row.String(DemandDeadline); ok {
		t.Deadline = model.ParseDate(s)
	}
	return t
}
