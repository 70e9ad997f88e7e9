package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"improvehub/internal/service/board"
	"improvehub/internal/state"
)

type StateHandler struct {
	board *board.Board
	now   func() time.Time
}

func NewStateHandler(b *board.Board) *StateHandler {
	return &StateHandler{board: b, now: time.Now}
}

func (h *StateHandler) render(c *gin.Context) {
	st := h.board.Controller().State()
	c.JSON(http.StatusOK, gin.H{
		"view":       st.View,
		"selectedId": st.SelectedID,
		"selected":   st.Selected(),
		"projects":   st.Projects,
		"refresh":    h.board.Status(),
	})
}

// GetState handles GET /state
func (h *StateHandler) GetState(c *gin.Context) {
	h.render(c)
}

// SetView handles POST /state/view
func (h *StateHandler) SetView(c *gin.Context) {
	var req struct {
		View string `json:"view" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := h.board.Controller().SetView(state.View(req.View)); err != nil {
		writeError(c, err)
		return
	}
	h.render(c)
}

// Select handles POST /state/select
func (h *StateHandler) Select(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := h.board.Controller().SelectProject(req.ID); err != nil {
		writeError(c, err)
		return
	}
	h.render(c)
}

// Clear handles POST /state/clear
func (h *StateHandler) Clear(c *gin.Context) {
	h.board.Controller().ClearSelection()
	h.render(c)
}

// Dashboard handles GET /dashboard
func (h *StateHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, board.BuildDashboard(h.board.Controller().Projects(), h.now()))
}

// Refresh handles POST /refresh
func (h *StateHandler) Refresh(c *gin.Context) {
	res, err := h.board.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	body := gin.H{
		"stats":    res.Stats,
		"degraded": res.DemandsErr != nil,
		"tookMs":   res.Took.Milliseconds(),
	}
	if res.DemandsErr != nil {
		body["warning"] = "demands could not be loaded: " + res.DemandsErr.Error()
	}
	c.JSON(http.StatusOK, body)
}
