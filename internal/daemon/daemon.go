package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tether-app/tether/internal/api"
	"github.com/tether-app/tether/internal/app/gamification"
	"github.com/tether-app/tether/internal/health"
	"github.com/tether-app/tether/internal/infra/cloud"
	_ "github.com/tether-app/tether/internal/infra/metrics" // Register Prometheus metrics
	"github.com/tether-app/tether/internal/infra/sqlite"
)

// Daemon is the core Tether runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Engine *gamification.Service
	Server *api.Server
	Health *health.Checker
	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = TetherHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Cloud mirror. nil keeps the engine strictly local-only.
	var mirror gamification.CloudMirror
	if cfg.Cloud.Enabled && cfg.Cloud.BaseURL != "" {
		mirror = cloud.New(cfg.Cloud.BaseURL, cfg.Cloud.Token)
	}

	engine := gamification.New(db, mirror)

	srv := api.NewServer(engine)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, dataDir)
	srv.SetHealthChecker(checker)

	return &Daemon{
		Config: cfg,
		DB:     db,
		Engine: engine,
		Server: srv,
		Health: checker,
	}, nil
}

// Serve hydrates the engine, starts the HTTP server, and blocks until
// shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Hydrate state before accepting requests: local load, streak expiry,
	// weekly challenge rotation, cloud reconciliation.
	state := d.Engine.LoadState(ctx)
	log.Printf("[daemon] state loaded: level=%d xp=%d streak=%d",
		state.Level.Level, state.Level.TotalXP, state.Stats.CurrentStreak)

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		d.Engine.Flush() // let in-flight cloud pushes land
		_ = d.DB.Close()
	}()

	fmt.Printf("Tether serving on http://%s\n", addr)
	if d.Config.Cloud.Enabled && d.Config.Cloud.BaseURL != "" {
		fmt.Printf("  Cloud mirror: %s\n", d.Config.Cloud.BaseURL)
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Engine != nil {
		d.Engine.Flush()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
