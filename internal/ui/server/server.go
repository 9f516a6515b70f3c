package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/information-sharing-networks/shortener-ui/internal/logger"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/actions"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/config"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/handlers"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/middleware"
)

type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
}

// NewServer creates the ui server and registers its routes
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware()
	if err := s.RegisterRoutes(s.router); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the configured router (used in tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// RegisterRoutes registers the page, the script, the /ui-api endpoints and the health check
func (s *Server) RegisterRoutes(router chi.Router) error {
	apiClient := client.NewClient(s.config.APIBaseURL, s.config.ShortenEndpoint, s.config.DispatchTimeout)
	apiClient.OnResponse(s.logResponse)

	handlerService := &handlers.HandlerService{
		Actions:     actions.NewService(apiClient, s.logger),
		Environment: s.config.Environment,
	}

	cors, err := middleware.CORS(s.config.AllowedOrigins, config.CORSMaxAgeInSeconds)
	if err != nil {
		return err
	}

	router.Get("/health/live", handlerService.HandleLiveness)

	router.Get("/", handlerService.HandleHome)
	router.Get("/static/app.js", handlerService.HandleScript)

	// UI API endpoints (one per action, the input is sent in the url form field)
	router.Route("/ui-api", func(r chi.Router) {
		r.Use(cors)
		r.Use(middleware.RequestSizeLimit(s.config.MaxRequestSize))
		r.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))

		r.Post("/{action}", handlerService.HandleAction)
	})

	return nil
}

// logResponse logs every backend response at debug level with the request id of the ui request that caused it
func (s *Server) logResponse(ctx context.Context, method, url string, status int, body []byte) {
	reqLogger := logger.ContextRequestLogger(ctx)
	reqLogger.DebugContext(ctx, "backend response",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", status),
		slog.String("body", string(body)),
	)
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
}

// Start runs the ui server until ctx is cancelled and then shuts it down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("UI server listening",
			slog.String("address", addr),
			slog.String("environment", s.config.Environment),
			slog.String("api_base_url", s.config.APIBaseURL),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down UI server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}
