package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"improvehub/internal/gateway"
	"improvehub/internal/service/auth"
	"improvehub/internal/service/board"
	"improvehub/internal/state"
)

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var remote *state.RemoteError
	switch {
	case errors.As(err, &remote), errors.Is(err, gateway.ErrPrimaryFetch):
		return http.StatusBadGateway
	case errors.Is(err, state.ErrProjectNotFound),
		errors.Is(err, state.ErrActivityNotFound),
		errors.Is(err, state.ErrTaskNotFound),
		errors.Is(err, state.ErrDemandNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrProjectExists), errors.Is(err, state.ErrActivityExists):
		return http.StatusConflict
	case errors.Is(err, state.ErrInvalidMonth),
		errors.Is(err, state.ErrInvalidView),
		errors.Is(err, board.ErrEmptyDemand):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var remote *state.RemoteError
	if errors.As(err, &remote) {
		body["reverted"] = remote.Reverted()
	}
	c.JSON(statusOf(err), body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
