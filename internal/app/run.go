package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("storage-mode", a.cfg.StorageMode),
		zap.String("notify-mode", a.cfg.NotifyMode),
		zap.Bool("test-mode", a.rules.TestMode),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("feed-url", a.cfg.FeedWSURL))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Connect to the feed; readiness flips via the state callback
	err := a.feedManager.Start()
	if err != nil {
		return fmt.Errorf("start feed manager: %w", err)
	}

	// Start the evaluation pipeline
	a.wg.Add(1)
	go a.runPipeline()

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runPipeline() {
	defer a.wg.Done()
	a.pipeline.Run(a.ctx, a.feedManager.MessageChan())
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
