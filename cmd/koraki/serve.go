package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kolapsis/koraki/internal/admin"
	"github.com/kolapsis/koraki/internal/api"
	"github.com/kolapsis/koraki/internal/auth"
	"github.com/kolapsis/koraki/internal/config"
	korakimcp "github.com/kolapsis/koraki/internal/mcp"
	"github.com/kolapsis/koraki/internal/middleware"
	"github.com/kolapsis/koraki/internal/notify"
	"github.com/kolapsis/koraki/internal/tunnel"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the koraki server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			slog.Info("starting koraki",
				"version", version,
				"host", cfg.Server.Host,
				"port", cfg.Server.Port,
				"koraki_host", cfg.Koraki.Host)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return run(runCtx, cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	token, err := auth.ResolveToken(cfg.Auth.APIToken, cfg.Auth.TokenDir)
	if err != nil {
		return fmt.Errorf("loading api token: %w", err)
	}
	if cfg.Auth.APIToken == "" {
		slog.Info("api token loaded", "dir", cfg.Auth.TokenDir)
	}

	// --- Tunnel ---
	var endpoint tunnel.Endpoint
	if cfg.Tunnel.Enabled {
		endpoint, err = tunnel.NewNgrok(cfg.Tunnel).Open(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = endpoint.Close() }()
		cfg.Server.PublicURL = endpoint.URL()
	}

	// --- Notifier ---
	notifier := notify.NewWebhookNotifier(a.client, a.store, notify.Options{
		UpdateThreshold: cfg.Koraki.UpdateThresholdMinutes,
		ExcerptLength:   cfg.Koraki.ExcerptLength,
	})

	// --- Admin ---
	adminHandler, err := admin.NewHandler(a.manager, a.store, admin.Site{
		Name:     cfg.Site.Name,
		URL:      cfg.Site.URL,
		AdminURL: cfg.AdminURL(),
	})
	if err != nil {
		return fmt.Errorf("loading admin templates: %w", err)
	}

	// --- MCP Server ---
	mcpServer := korakimcp.NewServer(&korakimcp.Deps{
		Status:  a.manager,
		OptIns:  a.store,
		Version: version,
	})

	handler := newRouter(token, adminHandler, api.NewHandler(notifier, a.store, a.manager), server.NewStreamableHTTPServer(mcpServer))

	// --- HTTP Server ---
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("koraki is ready", "addr", addr, "admin", cfg.AdminURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if endpoint != nil {
		go func() {
			if err := srv.Serve(endpoint); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("tunnel: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newRouter(token string, adminHandler *admin.Handler, apiHandler *api.Handler, mcpHTTP http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.With(middleware.AdminAuth(token)).Mount(admin.Path, adminHandler.Routes())
	r.With(middleware.BearerToken(token)).Mount("/api", apiHandler.Routes())

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerToken(token))
		r.Handle("/mcp", mcpHTTP)
	})

	return r
}
