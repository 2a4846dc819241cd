// Package app wires configuration, stores, the recall client and the
// workflow controller into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dkolesni-prog/recall/internal/app/endpoints"
	"github.com/dkolesni-prog/recall/internal/app/middleware"
	"github.com/dkolesni-prog/recall/internal/config"
	"github.com/dkolesni-prog/recall/internal/recall"
	"github.com/dkolesni-prog/recall/internal/settings"
	"github.com/dkolesni-prog/recall/internal/store"
	"github.com/dkolesni-prog/recall/internal/tabs"
	"github.com/dkolesni-prog/recall/internal/transport"
	"github.com/dkolesni-prog/recall/internal/workflow"
)

type App struct {
	Config     *config.Config
	Settings   *settings.Resolver
	Client     *recall.Client
	Controller *workflow.Controller

	stores []store.Store
}

// Build opens and bootstraps the configured stores, seeds default settings and
// assembles the controller. The caller must Close the returned App.
func Build(ctx context.Context, cfg *config.Config, renderer workflow.Renderer, opts workflow.Options) (*App, error) {
	a := &App{Config: cfg}

	syncStore, err := a.open(ctx, cfg.SyncStore, cfg)
	if err != nil {
		return nil, fmt.Errorf("settings store: %w", err)
	}

	localStore := syncStore
	if !shareable(cfg.SyncStore, cfg.LocalStore) {
		localStore, err = a.open(ctx, cfg.LocalStore, cfg)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("tag store: %w", err)
		}
	}

	a.Settings = settings.NewResolver(syncStore, localStore)
	if err := a.Settings.EnsureDefaults(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	if cfg.ServerURL != "" {
		if err := a.Settings.Override(cfg.ServerURL); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	a.Client = recall.NewClient(transport.NewResty(cfg.HTTPTimeout), a.Settings)
	a.Controller = workflow.New(a.Client, a.Settings, tabs.ContextProvider{}, renderer, opts)

	middleware.Log.Debug().
		Str("store", cfg.SyncStore).
		Str("tagStore", cfg.LocalStore).
		Msg("app ready")
	return a, nil
}

// shareable reports whether both scopes can live in a single instance.
// Two file stores on one path must not be opened twice.
func shareable(syncKind, localKind string) bool {
	if syncKind != localKind {
		return false
	}
	return syncKind == store.KindFile || syncKind == store.KindMemory
}

func (a *App) open(ctx context.Context, kind string, cfg *config.Config) (store.Store, error) {
	s, err := store.Open(ctx, kind, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Bootstrap(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("bootstrap %s store: %w", kind, err)
	}
	a.stores = append(a.stores, s)
	return s, nil
}

// Handler is the control API.
func (a *App) Handler(version string) http.Handler {
	pingers := make([]endpoints.Pinger, 0, len(a.stores))
	for _, s := range a.stores {
		pingers = append(pingers, s)
	}
	return endpoints.NewRouter(a.Controller, a.Settings, pingers, version)
}

func (a *App) Close(ctx context.Context) error {
	if a.Controller != nil {
		a.Controller.Close()
	}
	var errs []error
	for _, s := range a.stores {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
