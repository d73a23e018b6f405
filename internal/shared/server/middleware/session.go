package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/shared/server/respond"
)

// SessionCookieName names the cookie carrying the opaque session id.
const SessionCookieName = "tailor_session"

const (
	sessionIDKey    = "sessionId"
	sessionEmailKey = "sessionEmail"
)

// SessionLookup resolves a session id to the signed-in email. ok is false when
// no marker exists.
type SessionLookup func(ctx context.Context, id string) (email string, ok bool, err error)

// GateMode selects how a missing session is answered.
type GateMode int

const (
	// GateRedirect sends page requests back to the entry route.
	GateRedirect GateMode = iota
	// GateUnauthorized answers API requests with a JSON 401.
	GateUnauthorized
)

// EntryPath is the public route visitors without a session are sent to.
const EntryPath = "/"

// RequireSession blocks the request before any handler runs unless the session
// cookie resolves to a marker.
func RequireSession(lookup SessionLookup, mode GateMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := SessionIDFromCookie(c)
		email, ok, err := "", false, error(nil)
		if id != "" {
			email, ok, err = lookup(c.Request.Context(), id)
		}
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read session", nil)
			return
		}
		if !ok {
			switch mode {
			case GateUnauthorized:
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
			default:
				c.Redirect(http.StatusSeeOther, EntryPath)
				c.Abort()
			}
			return
		}

		c.Set(sessionIDKey, id)
		c.Set(sessionEmailKey, email)
		c.Next()
	}
}

// SessionIDFromCookie returns the raw session cookie value, or "".
func SessionIDFromCookie(c *gin.Context) string {
	id, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return id
}

// SessionIDFromContext fetches the session id set by RequireSession.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(sessionIDKey)
}

// SessionEmailFromContext fetches the email set by RequireSession.
func SessionEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(sessionEmailKey)
}

// SetSessionCookie writes the session cookie. It has no Max-Age: the marker
// lives until logout.
func SetSessionCookie(c *gin.Context, id string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
