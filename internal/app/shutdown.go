package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop the HTTP surface first so no new evaluation requests arrive
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Closing the feed closes its message channel, which drains the pipeline
	err = a.feedManager.Close()
	if err != nil {
		a.logger.Error("feed-manager-close-error", zap.Error(err))
	}

	a.cancel()
	a.wg.Wait()

	err = a.store.Close()
	if err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	a.appCache.Close()

	a.logger.Info("application-shutdown-complete")

	return nil
}
