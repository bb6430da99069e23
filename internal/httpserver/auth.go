package httpserver

import (
	"net/http"
	"time"

	"clubstore/internal/domain"
	"clubstore/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int          `json:"expiresIn"`
}

func (h *handlers) signup(c *gin.Context) {
	var req auth.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.deps.Auth.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// login signs the session in and publishes the new auth state.
func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	u, token, err := h.deps.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.deps.Sessions.BindUser(ctx, sessionFrom(c), u, token); err != nil {
		h.logger.Printf("auth: bind session user_id=%s error=%v", u.ID, err)
	}
	c.JSON(http.StatusOK, loginResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int(h.deps.Auth.AccessTTL() / time.Second),
	})
}

func (h *handlers) logout(c *gin.Context) {
	ctx := c.Request.Context()
	s := sessionFrom(c)
	token := bearerToken(c)
	if token == "" {
		token = s.AccessToken()
	}
	if err := h.deps.Auth.Logout(ctx, token); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if err := h.deps.Sessions.Unbind(ctx, s); err != nil {
		h.logger.Printf("auth: unbind session error=%v", err)
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	u := userFrom(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// authStream pushes the session's auth state as server-sent events until the
// client goes away or the session ends.
func (h *handlers) authStream(c *gin.Context) {
	sub := sessionFrom(c).Auth.Subscribe()
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	first, ok := <-sub.C()
	if !ok {
		c.Status(http.StatusGone)
		return
	}
	c.SSEvent("auth", first)
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case st, ok := <-sub.C():
			if !ok {
				return
			}
			c.SSEvent("auth", st)
			c.Writer.Flush()
		case <-done:
			return
		}
	}
}
