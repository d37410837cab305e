package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kolapsis/koraki/internal/config"
	"github.com/kolapsis/koraki/internal/koraki"
	"github.com/kolapsis/koraki/internal/link"
	"github.com/kolapsis/koraki/internal/settings"
)

// app holds the components shared by serve and the one-shot commands.
type app struct {
	cfg     *config.Config
	store   settings.Store
	client  *koraki.Client
	manager *link.Manager
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := settings.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}
	slog.Debug("settings store opened", "driver", cfg.Store.Driver)

	client := koraki.NewClient(cfg.Koraki.Host, nil, cfg.Koraki.RequestTimeout)

	return &app{
		cfg:     cfg,
		store:   store,
		client:  client,
		manager: link.NewManager(client, store, cfg.Site.URL, cfg.Koraki.AppURL),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
