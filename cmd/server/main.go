package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/fkoehler/stepscout/internal/config"
	"github.com/fkoehler/stepscout/internal/mcp"
	"github.com/fkoehler/stepscout/pkg/logging"
	"github.com/fkoehler/stepscout/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	res, err := mcp.NewResources(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}

	if err := res.Sessions.StartSweeper(fmt.Sprintf("@every %s", cfg.SweepInterval)); err != nil {
		logger.Error("failed to start session sweeper", "err", err)
		os.Exit(1)
	}

	srv := mcp.NewServer(logger, cfg, res)

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		10*time.Second,
		logger,
		srv,
		res.Sessions,
	)

	logger.Info("stepscout MCP server starting",
		"transport", cfg.Transport,
		"addr", net.JoinHostPort(cfg.Host, cfg.Port),
	)

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
	} else {
		logger.Info("MCP server stopped")
	}
}
