package webhook

import (
	"improvehub/internal/model"
)

// Actions and events understood by the automation workflow.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	EventCreateActivity = "create_activity"
	EventCreateTask     = "create_task"
)

// ProjectPayload is a lifecycle message: the discriminator followed by every
// project field at the top level.
type ProjectPayload struct {
	Action string `json:"action"`
	*model.Project
}

// DeletePayload only carries the id of the removed project.
type DeletePayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

type ActivityEvent struct {
	Event        string         `json:"event"`
	ProjectID    string         `json:"projectId"`
	ProjectTitle string         `json:"projectTitle"`
	Activity     model.Activity `json:"activity"`
	Timestamp    string         `json:"timestamp"`
}

type TaskEvent struct {
	Event        string            `json:"event"`
	ProjectID    string            `json:"projectId"`
	ProjectTitle string            `json:"projectTitle"`
	ActivityID   string            `json:"activityId"`
	ActivityName string            `json:"activityName"`
	Task         model.SubActivity `json:"task"`
	Timestamp    string            `json:"timestamp"`
}
