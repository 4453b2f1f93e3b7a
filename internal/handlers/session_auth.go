package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/services"
)

const (
	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "session"

	sessionCookieMaxAge = 30 * 24 * 60 * 60 // seconds, matches the session lifetime
)

// SessionAuthMiddleware resolves the session cookie into the authenticated
// user for downstream handlers.
type SessionAuthMiddleware struct {
	authService services.AuthService
	secure      bool
}

func NewSessionAuthMiddleware(authService services.AuthService, secure bool) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		authService: authService,
		secure:      secure,
	}
}

// AuthMiddleware rejects requests without a valid session.
func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := m.resolve(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Failed to validate session",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the session when present but never rejects.
func (m *SessionAuthMiddleware) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, err := m.resolve(c)
		if err == nil && user != nil {
			c.Set("user_id", user.ID)
			c.Set("user", user)
			c.Set("user_role", string(user.Role))
		}
		c.Next()
	}
}

// RequireAdminMiddleware gates a route group on the global admin role. It
// assumes AuthMiddleware already ran.
func (m *SessionAuthMiddleware) RequireAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func (m *SessionAuthMiddleware) resolve(c *gin.Context) (*models.User, *models.Session, error) {
	token, err := c.Cookie(SessionCookieName)
	if err != nil || token == "" {
		return nil, nil, nil
	}
	return m.authService.ValidateSession(c.Request.Context(), token)
}

// SetSessionCookie writes the session cookie on a successful register/login.
func (m *SessionAuthMiddleware) SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, sessionCookieMaxAge, "/", "", m.secure, true)
}

// ClearSessionCookie expires the session cookie.
func (m *SessionAuthMiddleware) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secure, true)
}

// ===== CONTEXT HELPERS =====

// GetUserFromContext returns the authenticated user set by AuthMiddleware,
// or nil when the request is anonymous.
func GetUserFromContext(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
