package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"improvehub/internal/service/board"
)

const idempotencyHeader = "Idempotency-Key"

type DemandHandler struct {
	board *board.Board
}

func NewDemandHandler(b *board.Board) *DemandHandler {
	return &DemandHandler{board: b}
}

// Submit handles POST /demands. The body is forwarded as is.
func (h *DemandHandler) Submit(c *gin.Context) {
	var demand map[string]any
	if err := c.ShouldBindJSON(&demand); err != nil {
		badRequest(c, "demand must be a JSON object")
		return
	}
	if len(demand) == 0 {
		writeError(c, board.ErrEmptyDemand)
		return
	}
	if username := c.GetString(ctxUsername); username != "" {
		if _, set := demand["submittedBy"]; !set {
			demand["submittedBy"] = username
		}
	}

	key := c.GetHeader(idempotencyHeader)
	accepted, err := h.board.SubmitDemand(c.Request.Context(), key, demand)
	if err != nil {
		writeError(c, err)
		return
	}
	if !accepted {
		c.JSON(http.StatusOK, gin.H{"accepted": false, "duplicate": key != ""})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}
