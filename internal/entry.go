// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tagtree/internal/api"
	"github.com/starford/tagtree/internal/clipboard"
	"github.com/starford/tagtree/internal/controller"
	"github.com/starford/tagtree/internal/datanode"
	"github.com/starford/tagtree/internal/iconreg"
	"github.com/starford/tagtree/internal/mcpserver"
	"github.com/starford/tagtree/internal/session"
	"github.com/starford/tagtree/internal/sse"
	"github.com/starford/tagtree/internal/storage"
	"github.com/starford/tagtree/internal/treeservice"
	"github.com/starford/tagtree/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. stdout belongs to the MCP transport
	// in MCP mode.
	var out io.Writer = os.Stdout
	if app.mcp {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("session_path", cfg.Session.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.Bool("mcp", app.mcp),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Data layer.
	fs := storage.NewFS(false)
	var sink clipboard.Sink
	if cfg.Clipboard.System {
		sink = clipboard.SystemSink{}
	}
	store := datanode.NewStore(
		datanode.WithProvider(fs),
		datanode.WithFileTypes(datanode.NewFileTypeRegistry(cfg.Tree.FilePatterns...)),
		datanode.WithClipboard(clipboard.New(sink, logger)),
		datanode.WithLogger(logger),
	)

	// The controller is configured before its loop starts; afterwards it is
	// only reached through the loop.
	ctrl := controller.New(
		controller.WithStore(store),
		controller.WithIcons(iconreg.New()),
		controller.WithLogger(logger),
	)
	ctrl.SetShowVirtualRoot(cfg.Tree.ShowVirtualRoot)
	ctrl.SetVirtualRootDisplay(cfg.Tree.RootLabel)
	loop := controller.NewLoop(ctrl)

	// Initialize SQLite session store.
	db, err := session.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("init session store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(250 * time.Millisecond)
	defer broker.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(gCtx)
	})

	var svc *treeservice.Service
	svcOpts := []treeservice.Option{
		treeservice.WithSession(db),
		treeservice.WithProvider(fs),
		treeservice.WithPublisher(broker),
		treeservice.WithLogger(logger),
		treeservice.WithSearchContext(gCtx),
	}

	// Start file watcher; its batches are applied to the tree.
	if cfg.Watch.Enabled {
		watcher := watch.New(cfg.Watch.Debounce, logger, func(paths []string) {
			if err := svc.SyncPaths(gCtx, paths); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}
		})
		svcOpts = append(svcOpts, treeservice.WithRootSetter(watcher))
		g.Go(func() error {
			if err := watcher.Run(gCtx); err != nil {
				logger.Warn("watcher: disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	svc = treeservice.New(loop, svcOpts...)
	if err := svc.Attach(gCtx); err != nil {
		return fmt.Errorf("attach service: %w", err)
	}

	if err := openInitial(gCtx, svc, app.paths, cfg.Session.Restore, logger); err != nil {
		logger.Warn("open failed", slog.String("error", err.Error()))
	}

	if app.mcp {
		srv := mcpserver.New(svc)
		g.Go(func() error {
			defer cancel()
			logger.Info("Serving MCP on stdio")
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		})
	} else {
		serveHTTP(gCtx, g, cancel, cfg, svc, broker, logger)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Stopped successfully")
	return nil
}

// openInitial opens the paths given on the command line, or restores the
// previous session when none are given.
func openInitial(ctx context.Context, svc *treeservice.Service, paths []string, restore bool, logger *slog.Logger) error {
	if len(paths) > 0 {
		_, err := svc.Open(ctx, paths, false)
		return err
	}
	if !restore {
		return nil
	}
	opened, ok, err := svc.Restore(ctx)
	if ok {
		logger.Info("Session restored", slog.Int("paths", len(opened)))
	}
	return err
}

func serveHTTP(gCtx context.Context, g *errgroup.Group, cancel context.CancelFunc, cfg *Config, svc *treeservice.Service, broker *sse.Broker, logger *slog.Logger) {
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.New(os.Stdout, "", log.LstdFlags)}))
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		cancel()

		return nil
	})
}
