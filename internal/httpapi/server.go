package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"trackreward/internal/platform"
)

var log = logrus.WithField("component", "httpapi")

type Server struct {
	http.Server
	registry *platform.Registry

	gin *gin.Engine
}

type unpardonableRequest struct {
	Unpardonable *bool `json:"unpardonable"`
}

type agentStatus struct {
	AgentID   string `json:"agent_id"`
	EpisodeID string `json:"episode_id,omitempty"`
}

func New(addr string, registry *platform.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)

	ginEngine := gin.New()
	server := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: ginEngine,
		},
		registry: registry,
		gin:      ginEngine,
	}

	server.gin.HandleMethodNotAllowed = true
	server.gin.Use(ginErrorHandlerMiddleware)
	server.gin.Use(ginLoggerMiddleware)
	server.gin.Use(gin.Recovery())

	v1 := server.gin.Group("/v1")
	v1.GET("/agents", server.listAgents)
	v1.POST("/agents/:agent/steps", server.step)
	v1.POST("/agents/:agent/reset", server.reset)
	v1.PUT("/agents/:agent/unpardonable", server.setUnpardonable)
	v1.GET("/agents/:agent/state", server.agentState)
	v1.GET("/episodes", server.listEpisodes)
	v1.GET("/episodes/:id", server.getEpisode)
	v1.GET("/episodes/:id/steps", server.getStepTrace)

	return server
}

func (s *Server) Handler() http.Handler {
	return s.gin
}

// Serve blocks until ctx is done or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.Addr).Info("http server listening")
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) listAgents(c *gin.Context) {
	agents := s.registry.Agents()
	out := make([]agentStatus, 0, len(agents))
	for _, agentID := range agents {
		status := agentStatus{AgentID: agentID}
		status.EpisodeID, _ = s.registry.OpenEpisode(agentID)
		out = append(out, status)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) step(c *gin.Context) {
	var params map[string]any
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, wrapError(http.StatusBadRequest, err))
		return
	}

	res, err := s.registry.Step(c.Request.Context(), c.Param("agent"), params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) reset(c *gin.Context) {
	agentID := c.Param("agent")
	if err := s.registry.Reset(c.Request.Context(), agentID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, agentStatus{AgentID: agentID})
}

func (s *Server) setUnpardonable(c *gin.Context) {
	var req unpardonableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, wrapError(http.StatusBadRequest, err))
		return
	}
	if req.Unpardonable == nil {
		abortWithError(c, wrapError(http.StatusBadRequest, fmt.Errorf("unpardonable is required")))
		return
	}

	agentID := c.Param("agent")
	if err := s.registry.SetUnpardonable(agentID, *req.Unpardonable); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": agentID, "unpardonable": *req.Unpardonable})
}

func (s *Server) agentState(c *gin.Context) {
	snap, ok := s.registry.State(c.Param("agent"))
	if !ok {
		abortWithError(c, wrapError(http.StatusNotFound, fmt.Errorf("unknown agent %q", c.Param("agent"))))
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) listEpisodes(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			abortWithError(c, wrapError(http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = v
	}

	episodes, err := s.registry.Episodes(c.Request.Context(), c.Query("agent"), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if episodes == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, episodes)
}

func (s *Server) getEpisode(c *gin.Context) {
	id := c.Param("id")
	summary, ok, err := s.registry.Episode(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !ok {
		abortWithError(c, wrapError(http.StatusNotFound, fmt.Errorf("unknown episode %q", id)))
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) getStepTrace(c *gin.Context) {
	id := c.Param("id")
	records, ok, err := s.registry.StepTrace(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !ok {
		abortWithError(c, wrapError(http.StatusNotFound, fmt.Errorf("no step trace for episode %q", id)))
		return
	}
	c.JSON(http.StatusOK, records)
}
