package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
	"github.com/land-registry-map/internal/delivery/http/handler"
	"github.com/land-registry-map/internal/delivery/http/middleware"
	"github.com/land-registry-map/internal/pkg/errors"
	"github.com/land-registry-map/internal/pkg/metrics"
	"github.com/land-registry-map/internal/pkg/utils"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	titleHandler  *handler.TitleHandler
	healthHandler *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	titleHandler *handler.TitleHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Land Registry Map",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
	})

	s := &Server{
		app:           app,
		config:        cfg,
		logger:        logger,
		titleHandler:  titleHandler,
		healthHandler: healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	// метрики снаружи: статус уже выставлен ErrorHandler
	s.app.Use(metrics.Middleware())
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", metrics.Handler())
	s.app.Get("/health", s.healthHandler.Health)

	landRegistry := s.app.Group("/land-registry",
		middleware.SessionAuth(s.config.Auth.JWTSecret, s.config.IsLocal()))
	landRegistry.Get("/titles", s.titleHandler.GetLandRegistryTitles)
}

// App - fiber приложение, используется в тестах
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()

	for _, route := range s.app.GetRoutes(true) {
		s.logger.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path))
	}

	s.logger.Info("Starting HTTP server",
		zap.String("address", addr),
		zap.String("runtime", s.config.Server.Runtime),
		zap.Bool("session_auth", !s.config.IsLocal()))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404, 405, паники) в формате AppError
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
			return utils.SendError(c, err)
		}

		return utils.SendError(c, errors.New(
			statusErrorCode(code),
			err.Error(),
			code,
		))
	}
}

// statusErrorCode - 404 -> NOT_FOUND
func statusErrorCode(code int) string {
	return strings.ToUpper(strings.ReplaceAll(fiberutils.StatusMessage(code), " ", "_"))
}
