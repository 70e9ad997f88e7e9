package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"improvehub/internal/service/auth"
	"improvehub/internal/service/board"
	"improvehub/pkg/otel"
	"improvehub/pkg/rbac"
)

// Pinger reports whether the remote store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

type Router struct {
	Engine *gin.Engine

	checks []namedCheck
}

type namedCheck struct {
	name  string
	check ReadyCheck
}

// AddReadyCheck adds a dependency to /readyz. Call it before serving.
func (r *Router) AddReadyCheck(name string, check ReadyCheck) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// NewRouter wires every route. db may be nil, in which case /readyz only
// checks that the first load has happened.
func NewRouter(b *board.Board, authService *auth.Service, jwtSecret string, db Pinger, logger *zap.Logger) *Router {
	r := gin.New()
	rt := &Router{Engine: r}
	r.Use(gin.Recovery(), TraceMiddleware(), otel.GinMiddleware(), LoggingMiddleware(logger))

	authHandler := NewAuthHandler(authService, logger)
	stateHandler := NewStateHandler(b)
	projectHandler := NewProjectHandler(b.Controller())
	demandHandler := NewDemandHandler(b)

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		for _, nc := range rt.checks {
			if err := nc.check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": nc.name + "_not_ready", "error": err.Error()})
				return
			}
		}
		if b.Status().LastSuccess.IsZero() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_loaded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/login", authHandler.Login)

	// Protected
	authed := r.Group("/")
	authed.Use(AuthMiddleware(jwtSecret))
	{
		read := RequirePermission(rbac.PermissionReadProject)
		write := RequirePermission(rbac.PermissionWriteProject)

		authed.GET("/state", read, stateHandler.GetState)
		authed.POST("/state/view", read, stateHandler.SetView)
		authed.POST("/state/select", read, stateHandler.Select)
		authed.POST("/state/clear", read, stateHandler.Clear)
		authed.GET("/dashboard", read, stateHandler.Dashboard)
		authed.POST("/refresh", RequirePermission(rbac.PermissionRefresh), stateHandler.Refresh)

		authed.GET("/projects", read, projectHandler.List)
		authed.GET("/projects/:id", read, projectHandler.Get)
		authed.POST("/projects", write, projectHandler.Create)
		authed.PUT("/projects/:id", write, projectHandler.Replace)
		authed.PATCH("/projects/:id", write, projectHandler.Patch)
		authed.DELETE("/projects/:id", RequirePermission(rbac.PermissionDeleteProject), projectHandler.Delete)

		authed.POST("/projects/:id/activities", write, projectHandler.AddActivity)
		authed.POST("/projects/:id/activities/:activityId/tasks", write, projectHandler.AddTask)
		authed.PUT("/projects/:id/tasks/:taskId/status", write, projectHandler.SetTaskStatus)
		authed.POST("/projects/:id/recurrent-demands", write, projectHandler.AddRecurrentDemand)
		authed.PUT("/projects/:id/recurrent-demands/:demandId/months/:month", write, projectHandler.SetMonthStatus)

		authed.POST("/demands", RequirePermission(rbac.PermissionSubmitDemand), demandHandler.Submit)
	}

	return rt
}

// Server returns an http.Server for graceful shutdown.
func (r *Router) Server(port string) *http.Server {
	if port != "" && port[0] != ':' {
		port = ":" + port
	}
	return &http.Server{
		Addr:              port,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
