package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application. Both loops stop
// after their current item; in-flight orders complete or fail inside
// the cycle context before the process exits.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.probe.SetReady(false)

	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	if err := a.priceStream.Close(); err != nil {
		a.logger.Error("price-stream-close-error", zap.Error(err))
	}

	// Loops first, then the ledger store they write through.
	a.wg.Wait()

	if err := a.store.Close(); err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}
	a.forecastCache.Close()

	a.logger.Info("application-shutdown-complete")
	return nil
}
