package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"clubstore/internal/domain"
	"clubstore/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "clubstore_session"
	sessionHeader = "X-Session-Token"
)

type ctxKey string

const (
	sessionCtxKey ctxKey = "session"
	userCtxKey    ctxKey = "user"
)

// sessionMiddleware resolves the caller's session, starting a new one when the
// token is missing or stale, refreshes the cookie lifetime and persists the
// session once the handler returns.
func sessionMiddleware(sessions *session.Manager, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		s, err := sessions.Lookup(ctx, sessionToken(c))
		if err != nil {
			s, err = sessions.Start(ctx)
			if err != nil {
				logger.Printf("session: start error=%v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
				return
			}
		}
		setSessionCookie(c, s, sessions)

		c.Request = c.Request.WithContext(context.WithValue(ctx, sessionCtxKey, s))
		c.Next()

		if err := sessions.Persist(context.WithoutCancel(ctx), s); err != nil {
			logger.Printf("session: persist error=%v", err)
		}
	}
}

// userMiddleware resolves the acting user from a bearer token, falling back to
// the user bound to the session. A bearer token that does not validate is
// rejected outright.
func userMiddleware(authSvc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *domain.User
		if token := bearerToken(c); token != "" {
			u, err := authSvc.Me(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			user = u
		} else if s := sessionFrom(c); s != nil {
			user = s.User()
		}
		if user != nil {
			c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userCtxKey, user))
		}
		c.Next()
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := userFrom(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *session.Session {
	s, _ := c.Request.Context().Value(sessionCtxKey).(*session.Session)
	return s
}

func userFrom(c *gin.Context) *domain.User {
	u, _ := c.Request.Context().Value(userCtxKey).(*domain.User)
	return u
}

func sessionToken(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(sessionHeader)); v != "" {
		return v
	}
	if v, err := c.Cookie(sessionCookie); err == nil {
		return v
	}
	return ""
}

func setSessionCookie(c *gin.Context, s *session.Session, sessions *session.Manager) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, s.ID, int(sessions.TTL().Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Header(sessionHeader, s.ID)
}

func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}
