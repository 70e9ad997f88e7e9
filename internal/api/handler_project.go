package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"improvehub/internal/model"
	"improvehub/internal/service/board"
	"improvehub/internal/state"
)

type ProjectHandler struct {
	ctrl *state.Controller
}

func NewProjectHandler(ctrl *state.Controller) *ProjectHandler {
	return &ProjectHandler{ctrl: ctrl}
}

// writeMutationError answers an acknowledged failure with 502 and the result
// as it now stands locally.
func writeMutationError(c *gin.Context, err error, p any) {
	var remote *state.RemoteError
	if errors.As(err, &remote) && !remote.Reverted() && p != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    err.Error(),
			"reverted": false,
			"result":   p,
		})
		return
	}
	writeError(c, err)
}

// List handles GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"projects": h.ctrl.Projects()})
}

// Get handles GET /projects/:id and makes it the selected project.
func (h *ProjectHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if err := h.ctrl.SelectProject(id); err != nil {
		writeError(c, err)
		return
	}
	p, ok := h.ctrl.Project(id)
	if !ok {
		writeError(c, state.ErrProjectNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var in board.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}

	p, err := h.ctrl.CreateProject(c.Request.Context(), in.NewProject())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Replace handles PUT /projects/:id. The form is applied to the current
// version of the project.
func (h *ProjectHandler) Replace(c *gin.Context) {
	var in board.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}

	p, err := h.ctrl.UpdateProject(c.Request.Context(), c.Param("id"), in.ApplyTo)
	if err != nil {
		writeMutationError(c, err, p)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Patch handles PATCH /projects/:id. Field edits stay local.
func (h *ProjectHandler) Patch(c *gin.Context) {
	var patch board.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request")
		return
	}

	p, err := h.ctrl.EditProject(c.Param("id"), patch.ApplyTo)
	if err != nil {
		writeMutationError(c, err, p)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.ctrl.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddActivity handles POST /projects/:id/activities
func (h *ProjectHandler) AddActivity(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	a, err := h.ctrl.AddActivity(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// AddTask handles POST /projects/:id/activities/:activityId/tasks
func (h *ProjectHandler) AddTask(c *gin.Context) {
	var in board.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request")
		return
	}

	t, err := h.ctrl.AddTask(c.Request.Context(), c.Param("id"), c.Param("activityId"), in.SubActivity())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// SetTaskStatus handles PUT /projects/:id/tasks/:taskId/status
func (h *ProjectHandler) SetTaskStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	status, ok := model.ParseTaskStatus(req.Status)
	if !ok {
		badRequest(c, "unknown task status")
		return
	}

	p, err := h.ctrl.SetTaskStatus(c.Request.Context(), c.Param("id"), c.Param("taskId"), status)
	if err != nil {
		writeMutationError(c, err, p)
		return
	}
	c.JSON(http.StatusOK, p)
}

// AddRecurrentDemand handles POST /projects/:id/recurrent-demands
func (h *ProjectHandler) AddRecurrentDemand(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	d, err := h.ctrl.AddRecurrentDemand(c.Request.Context(), c.Param("id"), req.Theme)
	if err != nil {
		writeMutationError(c, err, d)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// SetMonthStatus handles PUT /projects/:id/recurrent-demands/:demandId/months/:month
func (h *ProjectHandler) SetMonthStatus(c *gin.Context) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		badRequest(c, "month must be a number")
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	status, ok := model.ParseMonthStatus(req.Status)
	if !ok {
		badRequest(c, "unknown month status")
		return
	}

	p, err := h.ctrl.SetMonthStatus(c.Request.Context(), c.Param("id"), c.Param("demandId"), month, status)
	if err != nil {
		writeMutationError(c, err, p)
		return
	}
	c.JSON(http.StatusOK, p)
}
