// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
)

// GenerateHandler hands out never drawn plays
type GenerateHandler struct {
	service *service.GeneratorService
}

// NewGenerateHandler creates a new handler for the generate API
func NewGenerateHandler(service *service.GeneratorService) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// Generate returns `count` plays (default 1)
func (h *GenerateHandler) Generate(c echo.Context) error {
	count := service.MinPlayCount
	if raw := c.QueryParam("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`count` must be a number")
		}
		count = n
	}

	user := middleware.CurrentUser(c)
	plays, err := h.service.Generate(c.Request().Context(), user.ID, count)
	if err != nil {
		var genErr *service.GenerationError
		if errors.As(err, &genErr) && len(genErr.Accepted) > 0 {
			errorType := response.ServerException
			if errors.Is(err, lottery.ErrExhausted) {
				errorType = response.GeneratorException
			}
			// plays accepted before the failure are already recorded
			return response.ErrorResponseWithData(c, http.StatusInternalServerError, errorType, err.Error(),
				map[string]interface{}{"plays": genErr.Accepted})
		}
		return errorResponse(c, err)
	}

	return response.SuccessResponse(c, map[string]interface{}{
		"count": len(plays),
		"plays": plays,
	})
}

// Plays lists the caller's recently generated plays
func (h *GenerateHandler) Plays(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	user := middleware.CurrentUser(c)
	plays, err := h.service.RecentPlays(c.Request().Context(), user.ID, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, plays)
}
