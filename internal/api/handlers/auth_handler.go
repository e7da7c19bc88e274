// Package handlers contains the handlers for the API
package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
)

// AuthHandler is the handler for registration, login and logout
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler for the auth API
func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// userView is the public part of a user
type userView struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	IsAdmin    bool      `json:"is_admin"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserView(u *models.UserModel) userView {
	return userView{
		ID:         u.ID,
		Username:   u.Username,
		IsAdmin:    u.IsAdmin,
		IsApproved: u.IsApproved,
		CreatedAt:  u.CreatedAt,
	}
}

// bindCredentials reads username and password from a JSON or form body.
// The returned message is non-empty when the input is invalid.
func bindCredentials(c echo.Context) (credentials, string) {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return req, "Invalid request body"
	}
	if req.Username == "" {
		return req, "`username` is required"
	}
	if req.Password == "" {
		return req, "`password` is required"
	}
	return req, ""
}

// Register creates a new user
func (h *AuthHandler) Register(c echo.Context) error {
	req, msg := bindCredentials(c)
	if msg != "" {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, msg)
	}

	user, err := h.service.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	message := "Registered, waiting for admin approval"
	if user.IsApproved {
		message = "Registered as admin"
	}
	return response.CreatedResponse(c, map[string]interface{}{
		"user":    newUserView(user),
		"message": message,
	})
}

// Login opens a session and sets the session cookie
func (h *AuthHandler) Login(c echo.Context) error {
	req, msg := bindCredentials(c)
	if msg != "" {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, msg)
	}

	session, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.SessionToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteStrictMode,
	})

	return response.SuccessResponse(c, map[string]interface{}{
		"user":       newUserView(&session.User),
		"expires_at": session.ExpiresAt,
	})
}

// Logout deletes the current session, if any, and clears the cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.SessionToken(c)
	if _, err := h.service.Logout(c.Request().Context(), token); err != nil {
		return errorResponse(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteStrictMode,
	})
	return response.SuccessResponse(c, true)
}

// Me returns the logged in user
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthenticationException, "Not logged in")
	}
	return response.SuccessResponse(c, newUserView(user))
}

// isSecure reports whether the client reached us over https
func isSecure(c echo.Context) bool {
	return c.IsTLS() || c.Request().Header.Get(echo.HeaderXForwardedProto) == "https"
}
