package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/simwallet/app/services/viewer/handlers"
	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/foundation/localstore"
	"github.com/ardanlabs/simwallet/foundation/logger"
	"github.com/ardanlabs/simwallet/foundation/nameservice"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("VIEWER")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:30s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7180"`
			UIHost          string        `conf:"default:0.0.0.0:3080"`
			CORSOrigin      string        `conf:"default:*"`
		}
		Backend struct {
			Host    string        `conf:"default:http://localhost:5000"`
			Timeout time.Duration `conf:"default:10s"`
		}
		Storage struct {
			Path string `conf:"default:zwallet/viewer/local.db"`
		}
		NameService struct {
			Book string `conf:"default:zwallet/names.yaml"`
		}
		Sessions struct {
			IdleTimeout   time.Duration `conf:"default:30m"`
			MaxSessions   int           `conf:"default:1000"`
			SweepInterval time.Duration `conf:"default:1m"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "VIEWER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The name service labels wallets with the usernames that logged in or
	// signed up through the viewer. The book survives restarts.
	ns, err := nameservice.New(cfg.NameService.Book)
	if err != nil {
		return fmt.Errorf("unable to load name service: %w", err)
	}
	defer func() {
		if err := ns.Save(cfg.NameService.Book); err != nil {
			log.Errorw("shutdown", "status", "save name service", "ERROR", err)
		}
	}()

	for wallet, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "wallet", wallet)
	}

	// =========================================================================
	// Local Storage Support

	store, err := localstore.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("unable to open local storage: %w", err)
	}
	defer store.Close()

	// =========================================================================
	// Session Support

	// Each browser gets its own session with its own backend cookie jar, so
	// the backend sees every browser as a separate login.
	factory := func(id string) (*dashboard.Session, error) {
		client, err := backend.New(backend.Config{
			Host:    cfg.Backend.Host,
			Timeout: cfg.Backend.Timeout,
		})
		if err != nil {
			return nil, err
		}

		ev := func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...), "session", id)
		}

		s := dashboard.New(dashboard.Config{
			ID:        id,
			Client:    client,
			Storage:   store.Scope(id),
			NS:        ns,
			EvHandler: ev,
		})

		return s, nil
	}

	sessions := dashboard.NewRegistry(dashboard.RegistryConfig{
		Factory:       factory,
		IdleTimeout:   cfg.Sessions.IdleTimeout,
		MaxSessions:   cfg.Sessions.MaxSessions,
		SweepInterval: cfg.Sessions.SweepInterval,
		EvHandler: func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...))
		},
	})
	defer sessions.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, cfg.Backend.Host, log)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start UI Service

	log.Infow("startup", "status", "initializing UI support")

	uiMux, err := handlers.UIMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Sessions: sessions,
		Origin:   cfg.Web.CORSOrigin,
	})
	if err != nil {
		return fmt.Errorf("constructing ui mux: %w", err)
	}

	ui := http.Server{
		Addr:         cfg.Web.UIHost,
		Handler:      uiMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "ui router started", "host", ui.Addr)
		serverErrors <- ui.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		sessions.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := ui.Shutdown(ctx); err != nil {
			ui.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
