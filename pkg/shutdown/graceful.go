package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/fkoehler/stepscout/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Graceful blocks until one of the signals arrives, then stops every
// Stoppable in order under a shared timeout.
func Graceful(signals []os.Signal, timeout time.Duration, log *logging.Logger, stoppables ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, s := range stoppables {
		if err := s.Shutdown(ctx); err != nil {
			log.Warn("graceful shutdown completed with error", "err", err)
		}
	}
	log.Info("graceful shutdown complete")
}
