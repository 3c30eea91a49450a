// Package servecmder provides the serve command for running the bridge server.
package servecmder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emberco/recall/api"
	"github.com/emberco/recall/api/mcp"
	"github.com/emberco/recall/cmd/recall/wiring"
	"github.com/emberco/recall/pkg/bridge"
	"github.com/emberco/recall/pkg/capture"
	"github.com/emberco/recall/pkg/eventstream"
	"github.com/emberco/recall/pkg/eventstream/kafka"
	"github.com/emberco/recall/pkg/eventstream/nop"
	"github.com/emberco/recall/pkg/inject"
	"github.com/emberco/recall/pkg/logger"
	"github.com/emberco/recall/pkg/settings"
	"github.com/emberco/recall/pkg/syncer"
)

type ServeCommander struct {
	listen     string
	serviceURL string
	configDir  string
	noMCP      bool
	debug      bool
	logger     *zap.Logger
}

const serveLongDesc string = `Run the Recall bridge server.

The server receives host lifecycle events over HTTP, captures turns into the
external memory service, and assembles context blocks for generation. It also
mounts an MCP endpoint at /mcp exposing memory search to agent tooling.

Examples:
  recall serve
  recall serve --listen :9000
  recall serve --service-url http://127.0.0.1:5000`

const serveShortDesc string = "Run the Recall bridge server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the bridge server to listen on (default from settings)")
	cmd.Flags().StringVarP(&cmder.serviceURL, "service-url", "u", "", "Memory service base URL (default from settings)")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	// Settings store plus a file watcher so edits apply without a restart.
	cfger, err := settings.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving settings: %w", err)
	}
	store, err := settings.NewStore(cfger, c.logger)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	v, err := settings.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("initializing settings watcher: %w", err)
	}
	settings.Watch(v, store, c.logger)

	snap := store.Snapshot()

	service := wiring.NewGateway(&snap, c.serviceURL, c.logger)

	events, err := c.createPublisher(snap)
	if err != nil {
		return err
	}
	defer events.Close()

	// Pipelines and the bridge.
	slots := inject.NewRegistry()
	b := bridge.NewBridge(
		capture.NewPipeline(service, events, c.logger),
		inject.NewInjector(service, slots, events, c.logger),
		syncer.NewPipeline(service, events, c.logger, syncer.Config{
			BatchSize: snap.Sync.BatchSize,
			Pacing:    time.Duration(snap.Sync.PacingMs) * time.Millisecond,
		}),
		store,
		c.logger,
	)

	// MCP endpoint.
	mcpServer, err := mcp.NewServer(mcp.Config{
		Service: service,
		Noop:    c.noMCP,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	// Background status poller.
	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()

	poller := api.NewPoller(service, api.DefaultPollInterval, c.logger)
	go poller.Run(pollCtx)

	listen := c.listen
	if listen == "" {
		listen = snap.Server.Listen
	}

	var mcpHandler http.Handler
	if !c.noMCP {
		mcpHandler = mcpServer.Handler()
	}
	apiServer := api.NewServer(
		api.Config{ListenAddr: listen},
		b, service, store, slots, poller, mcpHandler, c.logger,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("bridge server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

func (c *ServeCommander) createPublisher(snap settings.Settings) (eventstream.Publisher, error) {
	if !snap.Stream.Enabled {
		return nop.NewPublisher(), nil
	}

	pub, err := kafka.NewPublisher(kafka.Config{
		Broker: snap.Stream.Broker,
		Topic:  snap.Stream.Topic,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}
	return pub, nil
}
