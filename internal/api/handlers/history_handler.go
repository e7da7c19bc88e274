// Package handlers contains the handlers for the API
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryHandler serves the draw history
type HistoryHandler struct {
	history  *service.HistoryService
	importer *service.ImportService
	crawler  *service.CrawlService
}

// NewHistoryHandler creates a new handler for the history API
func NewHistoryHandler(history *service.HistoryService, importer *service.ImportService, crawler *service.CrawlService) *HistoryHandler {
	return &HistoryHandler{
		history:  history,
		importer: importer,
		crawler:  crawler,
	}
}

// List returns the most recent draws
func (h *HistoryHandler) List(c echo.Context) error {
	limit, err := intQueryParam(c, "limit")
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, err.Error())
	}
	offset, err := intQueryParam(c, "offset")
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, err.Error())
	}

	page, err := h.history.List(c.Request().Context(), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, page)
}

// Export downloads every draw as a workbook
func (h *HistoryHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.history.Export(c.Request().Context(), &buf); err != nil {
		return errorResponse(c, err)
	}

	filename := fmt.Sprintf("ssq-history-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Import loads the uploaded `file` into the history
func (h *HistoryHandler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, "`file` is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, response.InputException, err.Error())
	}
	defer file.Close()

	user := middleware.CurrentUser(c)
	summary, err := h.importer.ImportFile(c.Request().Context(), user.Username, file, fileHeader.Filename)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, summary)
}

// Crawl fetches recent results from the configured sources
func (h *HistoryHandler) Crawl(c echo.Context) error {
	user := middleware.CurrentUser(c)
	summary, err := h.crawler.Crawl(c.Request().Context(), user.Username)
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, summary)
}

// CrawlStatus reports the last crawl
func (h *HistoryHandler) CrawlStatus(c echo.Context) error {
	status, err := h.crawler.Status()
	if err != nil {
		return errorResponse(c, err)
	}
	return response.SuccessResponse(c, status)
}

func intQueryParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("`%s` must be a non-negative number", name)
	}
	return n, nil
}
