package web

import (
	"context"
	"fmt"
	"time"

	"github.com/actionsum/meetnotes/internal/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	app     *fiber.App
	handler *Handler
	addr    string
	logger  *zap.SugaredLogger
}

func NewServer(cfg *config.Configuration, handler *Handler, customPort int, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	handler.SetupRoutes(app)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	return &Server{
		app:     app,
		handler: handler,
		addr:    fmt.Sprintf("%s:%d", cfg.Web.Host, port),
		logger:  logger,
	}
}

// Start serves the API until Shutdown is called
func (s *Server) Start() error {
	s.logger.Infof("Starting web server on http://%s", s.addr)
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down web server...")
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) GetAddress() string {
	return s.addr
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}
