package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// startHTTPServer serves router until SIGINT/SIGTERM, then shuts the HTTP
// server down and releases the database within the configured timeout.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	wait := gfshutdown.GracefulShutdown(ctx, app.config.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			app.logger.Info("Shutting down server...")
			return server.Shutdown(ctx)
		},
	})

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			app.logger.Error("Server failed", "error", err)
			app.cleanup()
			return err
		}
		// ListenAndServe returned after Shutdown; wait for the hooks to finish
		return app.finishShutdown(<-wait)
	case code := <-wait:
		return app.finishShutdown(code)
	}
}

func (app *application) finishShutdown(exitCode int) error {
	app.cleanup()
	if exitCode != 0 {
		return fmt.Errorf("graceful shutdown finished with exit code %d", exitCode)
	}
	app.logger.Info("Server shutdown completed")
	return nil
}
