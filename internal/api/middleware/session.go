package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/clipforge/clipforge/internal/domain"
	"github.com/clipforge/clipforge/internal/logger"
	"github.com/clipforge/clipforge/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the visitor session id.
const SessionIDKey = "session_id"

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Session resolves the visitor session from its cookie, creating one when the
// cookie is missing or the session expired.
func Session(store session.Store, cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "clipforge_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = session.DefaultTTL
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id := ""
		if cookie, err := c.Cookie(cfg.CookieName); err == nil && cookie != "" {
			sess, err := store.Get(ctx, cookie)
			switch {
			case err == nil:
				id = sess.ID
			case !errors.Is(err, domain.ErrSessionNotFound):
				logger.CtxError(ctx, "Failed to load session: error=%v", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
				return
			}
		}

		if id == "" {
			sess, err := store.Create(ctx)
			if err != nil {
				logger.CtxError(ctx, "Failed to create session: error=%v", err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
				return
			}
			id = sess.ID
		}

		// Refresh the cookie so it expires together with the session.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)

		c.Set(SessionIDKey, id)
		c.Request = c.Request.WithContext(logger.SetSessionID(ctx, id))
		c.Next()
	}
}

// GetSessionID returns the session id resolved by the Session middleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
