// Package handlers contains the handlers for the API
package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
)

// AdminHandler serves the admin only endpoints
type AdminHandler struct {
	auth    *service.AuthService
	history *service.HistoryService
	audit   *audit.Logger
}

// NewAdminHandler creates a new handler for the admin API
func NewAdminHandler(auth *service.AuthService, history *service.HistoryService, auditLog *audit.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, history: history, audit: auditLog}
}

// PendingUsers lists users waiting for approval
func (h *AdminHandler) PendingUsers(c echo.Context) error {
	users, err := h.auth.ListPendingUsers(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return response.SuccessResponse(c, views)
}

type approveRequest struct {
	UserID uint `json:"user_id" form:"user_id"`
}

// ApproveUser approves the user with `user_id`
func (h *AdminHandler) ApproveUser(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Invalid request body")
	}
	if req.UserID == 0 {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`user_id` is required")
	}

	user, err := h.auth.ApproveUser(c.Request().Context(), middleware.CurrentUser(c), req.UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, newUserView(user))
}

// FixDrawDates recomputes draw dates for a run of issues
func (h *AdminHandler) FixDrawDates(c echo.Context) error {
	var req service.FixDrawDatesRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "Invalid request body")
	}

	result, err := h.history.FixDrawDates(c.Request().Context(), middleware.CurrentUser(c).Username, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, result)
}

// AuditLogs returns the latest admin actions
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := h.audit.Recent(limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, entries)
}
