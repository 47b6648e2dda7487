// Package kiosco wires the offline-first sync subsystem together. The UI
// layer constructs one App at bootstrap and reaches every component through
// it; nothing here auto-starts on import.
package kiosco

import (
	"context"
	"fmt"
	"net/url"

	"gorm.io/gorm"

	"github.com/lujangrego99/kiosco-sub000/internal/checkout"
	"github.com/lujangrego99/kiosco-sub000/internal/config"
	"github.com/lujangrego99/kiosco-sub000/internal/connectivity"
	"github.com/lujangrego99/kiosco-sub000/internal/gateway"
	"github.com/lujangrego99/kiosco-sub000/internal/infra"
	"github.com/lujangrego99/kiosco-sub000/internal/sequence"
	"github.com/lujangrego99/kiosco-sub000/internal/store"
	"github.com/lujangrego99/kiosco-sub000/internal/syncer"
)

// App is the composition root of the sync subsystem: exactly one per running
// client.
type App struct {
	Store    store.LocalStore
	Gateway  gateway.RemoteGateway
	Monitor  *connectivity.Monitor
	Engine   *syncer.Engine
	Checkout *checkout.Service

	db *gorm.DB
}

// NewApp builds the whole subsystem from configuration. Nothing runs yet;
// call Start.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := infra.NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("abrir base local: %w", err)
	}

	st := store.New(db)
	gw := gateway.New(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout)

	probeAddr, err := probeAddress(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("derivar dirección de probe: %w", err)
	}
	monitor := connectivity.NewMonitor(
		connectivity.TCPProbe(probeAddr, cfg.APITimeout),
		cfg.ProbeInterval,
	)

	alloc := sequence.NewAllocator(st)
	engine := syncer.New(st, gw, monitor, alloc, cfg.PushConcurrency)

	return &App{
		Store:    st,
		Gateway:  gw,
		Monitor:  monitor,
		Engine:   engine,
		Checkout: checkout.NewService(st, alloc, engine),
		db:       db,
	}, nil
}

// Start launches connectivity polling and the engine (which fires the
// app-start sync and listens for reconnects). ctx bounds all background
// work.
func (a *App) Start(ctx context.Context) {
	a.Engine.Start(ctx)
	a.Monitor.Start(ctx)
}

// Close unhooks listeners, stops polling and closes the local database.
func (a *App) Close() error {
	a.Engine.Close()
	a.Monitor.Stop()

	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// probeAddress turns the API base URL into a host:port the connectivity
// probe can dial.
func probeAddress(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("URL de API sin host: %q", baseURL)
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return host + ":" + port, nil
}
