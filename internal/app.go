package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"livenotes/internal/controllers"
	"livenotes/internal/providers"
)

type App struct {
	Core      *Core
	WebServer *http.Server
}

func NewApp(core *Core, healthController *controllers.HealthController, router providers.RouterProviderInterface) *App {
	// Inner mux: API routes
	apiMux := http.NewServeMux()
	providers.Mount(apiMux, router)

	// Wrap API routes with metrics and access logging
	instrumentedAPI := providers.AccessLogMiddleware(core.Logger, providers.MetricsMiddleware(core.Metrics, apiMux))

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if core.Conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		Core: core,
		WebServer: &http.Server{
			Addr:         core.Conf.WebServer.Host + ":" + strconv.Itoa(core.Conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases the core.
func (app *App) Run(ctx context.Context) error {
	logger := app.Core.Logger
	conf := app.Core.Conf
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	if err := app.Core.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
