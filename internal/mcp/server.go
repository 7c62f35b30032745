package mcp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fkoehler/stepscout/internal/config"
	"github.com/fkoehler/stepscout/pkg/logging"
)

// Server wraps an MCP SDK server with either an HTTP listener or a stdio
// transport, selected by configuration.
type Server struct {
	logger *logging.Logger
	config config.Config

	mcpServer *sdkmcp.Server
	srv       *http.Server

	started atomic.Bool
	cancel  context.CancelFunc
}

// NewServer constructs the MCP server with all tools and resources wired.
func NewServer(log *logging.Logger, cfg config.Config, res *Resources) *Server {
	impl := &sdkmcp.Implementation{
		Name:    "stepscout",
		Version: "0.2.0",
	}

	mcpServer := sdkmcp.NewServer(impl, nil)
	registerTools(mcpServer, res, log)
	registerResources(mcpServer)

	handler := sdkmcp.NewStreamableHTTPHandler(func(req *http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp/stream", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		logger:    log,
		config:    cfg,
		mcpServer: mcpServer,
		srv:       httpSrv,
	}
}

// Run serves until shutdown. On the stdio transport it blocks until the
// client disconnects or Shutdown cancels the session.
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if s.config.Transport == config.TransportStdio {
		s.logger.Info("MCP server serving on stdio")

		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	}

	s.logger.Info("MCP HTTP server listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for MCP server")

	if s.config.Transport == config.TransportStdio {
		if s.cancel != nil {
			s.cancel()
		}
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("MCP HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("MCP HTTP server shutdown complete")
	return nil
}
