package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"courtq/internal/config"
	"courtq/internal/dispatch"
	"courtq/internal/engine"
	"courtq/internal/logging"
	"courtq/internal/queue"
)

// Dispatcher handles one normalized event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev dispatch.Event) (*dispatch.Response, error)
}

// LineClient is the outbound LINE surface used while handling events.
type LineClient interface {
	Profile(ctx context.Context, groupID, userID string) string
	Reply(ctx context.Context, replyToken, text string, courts []queue.Resource) error
}

// HeadNotifier receives promotions after the reply is sent.
type HeadNotifier interface {
	NotifyHead(ctx context.Context, promotion dispatch.Promotion) error
}

// RosterReader serves the read API.
type RosterReader interface {
	Resources() []queue.Resource
	Has(resource queue.Resource) bool
	Roster(ctx context.Context, resource queue.Resource) (engine.Roster, error)
	Rosters(ctx context.Context) ([]engine.Roster, error)
}

// Deps bundles the collaborators of the server.
type Deps struct {
	Dispatcher Dispatcher
	Line       LineClient
	Notifier   HeadNotifier
	Rosters    RosterReader
}

// Server is the HTTP front of the bot.
type Server struct {
	bind     string
	secret   string
	apiToken string
	deps     Deps
	logger   *slog.Logger

	echo     *echo.Echo
	server   *http.Server
	listener net.Listener
}

const maxBodyBytes = 1 << 20

// New builds the server and registers its routes.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		bind:     strings.TrimSpace(cfg.Server.Bind),
		secret:   cfg.Line.ChannelSecret,
		apiToken: cfg.Server.APIToken,
		deps:     deps,
		logger:   logging.NewComponentLogger(logger, "webhook"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				logging.String("method", v.Method),
				logging.String("uri", v.URI),
				logging.Int("status", v.Status),
				logging.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, logging.Error(v.Error))
			}
			s.logger.Debug("http request", attrs...)
			return nil
		},
	}))

	e.POST("/callback", s.handleCallback)
	e.GET("/healthz", s.handleHealth)

	api := e.Group("/api/v1", bearerAuth(s.apiToken))
	api.GET("/courts", s.handleCourts)
	api.GET("/courts/:court", s.handleCourt)

	s.echo = e
	s.server = &http.Server{
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured bind address and serves until ctx is done
// or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("webhook listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("webhook server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
