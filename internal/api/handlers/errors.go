// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/internal/spreadsheet"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
)

// errorResponse maps service errors onto the JSON error envelope
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat),
		errors.Is(err, spreadsheet.ErrEmptyWorkbook):
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSession):
		return response.ErrorResponse(c, http.StatusUnauthorized, response.AuthenticationException, err.Error())
	case errors.Is(err, service.ErrPendingApproval):
		return response.ErrorResponse(c, http.StatusForbidden, response.PermissionException, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return response.ErrorResponse(c, http.StatusNotFound, response.NotFoundException, err.Error())
	case errors.Is(err, service.ErrCrawlRunning):
		return response.ErrorResponse(c, http.StatusConflict, response.ConflictException, err.Error())
	case errors.Is(err, lottery.ErrExhausted):
		return response.ErrorResponse(c, http.StatusInternalServerError, response.GeneratorException, err.Error())
	default:
		return response.ErrorResponse(c, http.StatusInternalServerError, response.ServerException, err.Error())
	}
}
