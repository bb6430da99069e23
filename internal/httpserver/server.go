package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"clubstore/internal/db"
	"clubstore/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Server serves the storefront, cart, auth and admin API. WriteTimeout is
// left unset because /api/auth/stream holds its response open.
type Server struct {
	http     *http.Server
	logger   *log.Logger
	sessions *session.Manager
}

func New(addr string, logger *log.Logger, pool *pgxpool.Pool, deps Deps) (*Server, error) {
	router, err := buildRouter(logger, pool, deps)
	if err != nil {
		return nil, err
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger:   logger,
		sessions: deps.Sessions,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones, including
// open auth streams, until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Printf("http: shutting down active_sessions=%d", s.sessions.Active())
	return s.http.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyHandler reports 503 until the database answers a ping.
func readyHandler(pool *pgxpool.Pool, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		if err := db.Ping(c.Request.Context(), pool); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "activeSessions": sessions.Active()})
	}
}
