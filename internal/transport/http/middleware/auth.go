package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-content/internal/core/domain"
	"github.com/arklim/social-platform-content/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header and resolves the calling user.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing or malformed authorization header"))
			return
		}

		user, err := auth.Identify(c.Request.Context(), token)
		if err != nil {
			abortIdentifyError(c, err)
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

// OptionalAuth resolves the calling user when an Authorization header is
// present and leaves the request anonymous otherwise. A header that is
// present but invalid still fails the request.
func OptionalAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing or malformed authorization header"))
			return
		}

		user, err := auth.Identify(c.Request.Context(), token)
		if err != nil {
			abortIdentifyError(c, err)
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

func abortIdentifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "invalid access token"))
	case errors.Is(err, usecase.ErrStorageUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable,
			newErrorResponse(c, "service temporarily unavailable"))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			newErrorResponse(c, "authentication failed"))
	}
}

func setCurrentUser(c *gin.Context, user domain.User) {
	c.Set(UserIDKey, user.ID)
	c.Set("user", user)

	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = user.ID
	}
}

// CurrentUser retrieves the authenticated user stored by RequireAuth or OptionalAuth.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	raw, exists := c.Get("user")
	if !exists {
		return domain.User{}, false
	}

	user, ok := raw.(domain.User)
	return user, ok
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok && id != "" {
		return id, true
	}

	return "", false
}
