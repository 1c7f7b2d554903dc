package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Transporegistros/carga-colombia-track/internal/models"
	"github.com/Transporegistros/carga-colombia-track/internal/services"
)

const (
	sessionKey = "session"
	tokenKey   = "token"
)

// AuthMiddleware hydrates the bearer token into a session and injects it
// into the request context. Unauthenticated requests get a 401 carrying a
// login_url that preserves the requested path, so the client can send the
// user back where they were headed after signing in.
func AuthMiddleware(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortToLogin(c, "authorization header required")
			return
		}

		session, err := sessions.Hydrate(c.Request.Context(), token)
		if err != nil {
			abortToLogin(c, "invalid or expired token")
			return
		}

		c.Set(sessionKey, session)
		c.Set(tokenKey, token)

		c.Next()
	}
}

// RequireEmpresa rejects sessions that are not linked to a company. Partial
// sessions (profile fetch failed during hydration) land here too: they can
// reach /auth/me and /auth/logout but not company data.
func RequireEmpresa() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil || session.EmpresaID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no company linked to this account"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only sessions carrying the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if !session.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFrom returns the hydrated session injected by AuthMiddleware, or
// nil when the route ran without it.
func SessionFrom(c *gin.Context) *models.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

// TokenFrom returns the raw bearer token injected by AuthMiddleware.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	return parts[1], true
}

// abortToLogin answers 401 and points the client at the login page with a
// next parameter holding the originally requested path.
func abortToLogin(c *gin.Context, message string) {
	next := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		next += "?" + c.Request.URL.RawQuery
	}

	c.JSON(http.StatusUnauthorized, gin.H{
		"error":     message,
		"login_url": "/login?next=" + url.QueryEscape(next),
	})
	c.Abort()
}
