// Package middleware provides the middleware for the Echo instance
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "ssq_session"

const (
	userContextKey    = "user"
	sessionContextKey = "session"
)

// SessionToken returns the token from the session cookie, falling back to an
// `Authorization: Bearer <token>` header.
func SessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware rejects requests without a live session
func AuthMiddleware(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := SessionToken(c)
			if token == "" {
				return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthenticationException, "Not logged in")
			}

			session, err := auth.VerifySession(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrInvalidSession):
					return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthenticationException, "Invalid or expired session")
				case errors.Is(err, service.ErrPendingApproval):
					return response.ErrorResponse(c, http.StatusForbidden, response.PermissionException, err.Error())
				default:
					return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, err.Error())
				}
			}

			// Add session data to context for use in handlers
			c.Set(userContextKey, &session.User)
			c.Set(sessionContextKey, session)

			return next(c)
		}
	}
}

// AdminMiddleware must run after AuthMiddleware
func AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.IsAdmin {
				return response.ErrorResponse(c, http.StatusForbidden, response.PermissionException, "Admin access required")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user set by AuthMiddleware, or nil
func CurrentUser(c echo.Context) *models.UserModel {
	user, _ := c.Get(userContextKey).(*models.UserModel)
	return user
}

// CurrentSession returns the session set by AuthMiddleware, or nil
func CurrentSession(c echo.Context) *models.SessionModel {
	session, _ := c.Get(sessionContextKey).(*models.SessionModel)
	return session
}
