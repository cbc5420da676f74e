// Package web serves the authentication flow, landing page, health and
// metrics over fiber.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pyromage/micro-oidc/internal/auth"
	"github.com/pyromage/micro-oidc/internal/config"
	loggeradapter "github.com/pyromage/micro-oidc/internal/logger/adapter/fiber"
	"github.com/pyromage/micro-oidc/internal/web/handler"
	oidchandler "github.com/pyromage/micro-oidc/internal/web/handler/auth/oidc"
	"github.com/pyromage/micro-oidc/internal/web/handler/home"
	"github.com/pyromage/micro-oidc/internal/web/session"
)

const (
	// HealthPath reports liveness and provider availability.
	HealthPath = "/health"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"

	statusOK       = "ok"
	statusDraining = "shutting down"
)

// Health is the /health response body.
type Health struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	registry     *auth.Registry
	sessions     *session.Store
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets /health fail for ShutDownTime seconds, stops the http server
// and closes the session storage.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so health returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	_ = s.sessions.Close()

	log.Info().Msg("http server was stopped ... good bye...")
}

// Health handles GET /health.
func (s *Service) Health(c *fiber.Ctx) error {
	h := Health{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]bool),
	}

	for _, p := range s.registry.Providers() {
		h.Services[p.ID] = p.Available
	}

	if !s.alive.Load() {
		h.Status = statusDraining
		return c.Status(fiber.StatusServiceUnavailable).JSON(h)
	}

	return c.JSON(h)
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, registry *auth.Registry, sessions *session.Store) *Service {
	if cfg == nil || registry == nil || sessions == nil {
		panic(handler.ErrNilDepsFatalLogMsg)
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	app.Use(loggeradapter.New(loggeradapter.Config{
		Config:        cfg.Log,
		CheckAliveURI: HealthPath,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     false,
			},
		),
	)

	service := &Service{
		cfg:      cfg,
		App:      app,
		registry: registry,
		sessions: sessions,
	}
	service.alive.Store(true)

	app.Get(HealthPath, service.Health)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	deps := handler.Deps{Config: cfg, Registry: registry, Sessions: sessions}

	for _, h := range []handler.Service{&home.Handler, &oidchandler.Handler} {
		if err := h.Init(app, deps); err != nil {
			log.Fatal().Err(err).Msg("failed to init handler")
		}
	}

	return service
}
