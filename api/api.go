package api

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/bridge"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/inject"
	"github.com/emberco/recall/pkg/settings"
)

// Server is the bridge HTTP server hosts talk to.
type Server struct {
	config  Config
	bridge  *bridge.Bridge
	service gateway.Service
	store   *settings.Store
	slots   *inject.Registry
	poller  *Poller
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server. The bridge, gateway, and slot registry
// are injected so the CLI and the server share one wiring.
func NewServer(config Config, b *bridge.Bridge, service gateway.Service, store *settings.Store, slots *inject.Registry, poller *Poller, mcpHandler http.Handler, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		bridge:  b,
		service: service,
		store:   store,
		slots:   slots,
		poller:  poller,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/events/:kind", s.handleEvent)
	v1.Get("/prompt/:slot", s.handleGetPrompt)
	v1.Get("/settings", s.handleGetSettings)
	v1.Put("/settings", s.handlePutSettings)
	v1.Get("/status", s.handleStatus)
	v1.Post("/sync", s.handleSync)
	v1.Post("/memories", s.handleAddMemory)
	v1.Post("/query", s.handleQuery)
	v1.Delete("/memories", s.handleDeleteMemories)

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting bridge server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server after draining in-flight
// captures.
func (s *Server) Shutdown() error {
	s.bridge.Wait()
	return s.app.Shutdown()
}
