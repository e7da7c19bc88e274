// Package api contains the API routes for the SSQ API
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nsvirk/ssqapi/internal/api/handlers"
	"github.com/nsvirk/ssqapi/internal/api/middleware"
	"github.com/nsvirk/ssqapi/internal/config"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/internal/scraper"
	"github.com/nsvirk/ssqapi/internal/service"
	"github.com/nsvirk/ssqapi/internal/web"
	"github.com/nsvirk/ssqapi/pkg/utils/audit"
	"github.com/nsvirk/ssqapi/pkg/utils/response"
	"github.com/nsvirk/ssqapi/pkg/utils/state"
	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services holds the services behind the routes
type Services struct {
	Auth      *service.AuthService
	Generator *service.GeneratorService
	Import    *service.ImportService
	Crawl     *service.CrawlService
	History   *service.HistoryService
	Stream    *service.StreamService // nil without Redis
	Audit     *audit.Logger
}

// NewServices builds the services over db. Without a redis client crawls run
// unlocked.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Services, error) {
	auditLog, err := audit.New(db, "api")
	if err != nil {
		return nil, err
	}
	st, err := state.NewState(db)
	if err != nil {
		return nil, fmt.Errorf("failed to init state: %v", err)
	}

	sources, err := scraper.LoadSourceConfigs(nil)
	if err != nil {
		return nil, err
	}
	chain, err := scraper.NewChain(sources, nil)
	if err != nil {
		return nil, err
	}

	var locker service.Locker
	var stream *service.StreamService
	if redisClient != nil {
		locker = repository.NewRedisLocker(redisClient)
		stream = service.NewStreamService(repository.NewRedisPublisher(redisClient))
	}

	crawlLimit, err := strconv.Atoi(cfg.CrawlLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid SSQ_API_CRAWL_LIMIT %q: %v", cfg.CrawlLimit, err)
	}

	importService := service.NewImportService(db, auditLog)
	return &Services{
		Auth:      service.NewAuthService(db, auditLog, cfg.SessionDuration()),
		Generator: service.NewGeneratorService(db),
		Import:    importService,
		Crawl:     service.NewCrawlService(chain, importService, locker, st, auditLog, crawlLimit),
		History:   service.NewHistoryService(db, auditLog),
		Stream:    stream,
		Audit:     auditLog,
	}, nil
}

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *Services) {

	// Static pages
	web.Register(e)

	// Create a group for all API routes
	api := e.Group("/api")

	// Index route
	api.GET("/", indexRoute(cfg))

	// Auth routes (unprotected)
	authHandler := handlers.NewAuthHandler(svc.Auth)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	requireAuth := middleware.AuthMiddleware(svc.Auth)
	requireAdmin := middleware.AdminMiddleware()

	api.GET("/me", authHandler.Me, requireAuth)

	// Generator routes (protected)
	generateHandler := handlers.NewGenerateHandler(svc.Generator)
	api.GET("/generate", generateHandler.Generate, requireAuth)
	api.GET("/plays", generateHandler.Plays, requireAuth)

	// History routes (protected)
	historyHandler := handlers.NewHistoryHandler(svc.History, svc.Import, svc.Crawl)
	api.GET("/history", historyHandler.List, requireAuth)
	api.GET("/history/export", historyHandler.Export, requireAuth)
	if svc.Stream != nil {
		streamHandler := handlers.NewStreamHandler(svc.Stream)
		api.GET("/history/events", streamHandler.HistoryEvents, requireAuth)
	}

	// History maintenance routes (admin)
	api.POST("/import", historyHandler.Import, requireAuth, requireAdmin)
	api.POST("/crawl", historyHandler.Crawl, requireAuth, requireAdmin)
	api.GET("/crawl/status", historyHandler.CrawlStatus, requireAuth, requireAdmin)

	// Admin routes
	adminHandler := handlers.NewAdminHandler(svc.Auth, svc.History, svc.Audit)
	adminGroup := api.Group("/admin")
	adminGroup.Use(requireAuth, requireAdmin)
	adminGroup.GET("/pending-users", adminHandler.PendingUsers)
	adminGroup.POST("/approve-user", adminHandler.ApproveUser)
	adminGroup.POST("/fix-draw-dates", adminHandler.FixDrawDates)
	adminGroup.GET("/audit-logs", adminHandler.AuditLogs)
}

// HTTPErrorHandler renders errors not handled by a handler, such as unknown
// routes, in the JSON envelope
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		message = fmt.Sprint(he.Message)
	}

	errorType := response.ServerException
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		errorType = response.NotFoundException
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		errorType = response.InputException
	}
	if err := response.ErrorResponse(c, status, errorType, message); err != nil {
		zaplogger.Error("Failed to write error response", zaplogger.Fields{"error": err.Error()})
	}
}

// indexRoute returns the API name and version
func indexRoute(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		message := fmt.Sprintf("%s %s", cfg.APIName, cfg.APIVersion)
		return response.SuccessResponse(c, message)
	}
}
