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

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop accepting swaps first so the event pipeline can drain
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Disconnect feed clients
	err = a.feed.Close()
	if err != nil {
		a.logger.Error("event-feed-close-error", zap.Error(err))
	}

	// Drain pending event persistence
	err = a.events.Close()
	if err != nil {
		a.logger.Error("event-recorder-close-error", zap.Error(err))
	}

	// Close storage last, after the recorder stopped writing
	err = a.storage.Close()
	if err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}
