package state

// Durability says how a mutation relates to its remote mirror.
type Durability int

const (
	// LocalOnly changes the view state and never calls out.
	LocalOnly Durability = iota
	// BestEffort applies locally, then mirrors in a tracked background task.
	// Remote failures are logged and the local change stands.
	BestEffort
	// Acknowledged applies locally, then waits for the mirror. A remote
	// failure is reported to the caller but the local change stands.
	Acknowledged
	// Confirmed waits for the mirror first and applies only on success.
	Confirmed
	// Compensated applies locally, waits for the mirror and restores the
	// previous snapshot when it fails.
	Compensated
)

func (d Durability) String() string {
	switch d {
	case LocalOnly:
		return "local_only"
	case BestEffort:
		return "best_effort"
	case Acknowledged:
		return "acknowledged"
	case Confirmed:
		return "confirmed"
	case Compensated:
		return "compensated"
	default:
		return "unknown"
	}
}

// Mutation names a user-initiated change to the project collection.
type Mutation string

const (
	MutationEditFields      Mutation = "edit_fields"
	MutationUpdateProject   Mutation = "update_project"
	MutationCreateProject   Mutation = "create_project"
	MutationDeleteProject   Mutation = "delete_project"
	MutationCreateActivity  Mutation = "create_activity"
	MutationCreateTask      Mutation = "create_task"
	MutationTaskStatus      Mutation = "task_status"
	MutationRecurrentDemand Mutation = "recurrent_demand"
)

// Policy maps each mutation to its durability class.
type Policy map[Mutation]Durability

// DefaultPolicy keeps the behaviour users of the dashboard rely on: project
// creation is confirmed, deletion is compensated, updates are acknowledged
// without rollback, and activity/task creation is best effort.
func DefaultPolicy() Policy {
	return Policy{
		MutationEditFields:      LocalOnly,
		MutationUpdateProject:   Acknowledged,
		MutationCreateProject:   Confirmed,
		MutationDeleteProject:   Compensated,
		MutationCreateActivity:  BestEffort,
		MutationCreateTask:      BestEffort,
		MutationTaskStatus:      Acknowledged,
		MutationRecurrentDemand: Acknowledged,
	}
}

// For returns the class of m; unknown mutations are Acknowledged.
func (p Policy) For(m Mutation) Durability {
	if d, ok := p[m]; ok {
		return d
	}
	return Acknowledged
}
