// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"

	"github.com/ardanlabs/simwallet/app/services/viewer/handlers/debug/checkgrp"
	v1 "github.com/ardanlabs/simwallet/app/services/viewer/handlers/v1"
	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/web/mid"
	"github.com/ardanlabs/simwallet/foundation/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Sessions *dashboard.Registry
	Origin   string
}

// UIMux constructs an http.Handler with all application routes defined.
func UIMux(cfg MuxConfig) (http.Handler, error) {

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors(cfg.Origin),
		mid.Panics(),
	)

	// Accept CORS 'OPTIONS' preflight requests.
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h, mid.Cors(cfg.Origin))

	page, err := newIndex()
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}

	// Load the v1 routes.
	v1.Routes(app, v1.Config{
		Log:      cfg.Log,
		Sessions: cfg.Sessions,
		Page:     page,
	})

	return app, nil
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service.
func DebugMux(build string, backend string, log *zap.SugaredLogger) http.Handler {
	mux := DebugStandardLibraryMux()

	mux.Handle("/metrics", promhttp.Handler())

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build:   build,
		Log:     log,
		Backend: backend,
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	return mux
}
