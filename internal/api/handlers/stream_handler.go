// Package handlers contains the handlers for the API
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
)

// StreamHandler is the handler for the stream API
type StreamHandler struct {
	service *service.StreamService
}

// NewStreamHandler creates a new handler for the stream API
func NewStreamHandler(service *service.StreamService) *StreamHandler {
	return &StreamHandler{service: service}
}

// HistoryEvents streams history changes as server-sent events
func (h *StreamHandler) HistoryEvents(c echo.Context) error {
	ctx := c.Request().Context()
	events, closeFn, err := h.service.Subscribe(ctx)
	if err != nil {
		return response.ErrorResponse(c, http.StatusServiceUnavailable, response.ServerException, err.Error())
	}
	defer closeFn()

	// Set headers for SSE
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	if err := h.service.Stream(ctx, c.Response(), events); err != nil {
		zaplogger.Debug("History stream closed", zaplogger.Fields{"error": err.Error()})
	}
	return nil
}
