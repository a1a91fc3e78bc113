package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"reelcast/internal/config"
	"reelcast/internal/logging"
)

// Server hosts the HTTP API.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	app      *fiber.App
	validate *validator.Validate
}

// New builds the fiber application and registers routes.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "httpapi"),
		validate: newValidator(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "reelcast",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(requestLogger(s.logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	v1 := s.app.Group("/api/v1")
	v1.Post("/tokens/merge", s.mergeTokens)
	v1.Post("/captions", s.alignCaptions)
	v1.Post("/timeline", s.layoutTimeline)
}

// App exposes the fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve listens on the configured bind address until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.API.Bind)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener serves on listener until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(listener)
	}()
	s.logger.Info("http api listening", logging.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := s.app.ShutdownWithContext(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	s.logger.Info("http api stopped")
	return <-errCh
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	if code >= fiber.StatusInternalServerError {
		logging.ErrorWithContext(s.logger, "request failed", "http_request_failed",
			logging.Error(err),
			logging.String("path", c.Path()))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}
