package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hypertask-network/hypertask/internal/backend"
	"github.com/hypertask-network/hypertask/internal/chat"
	"github.com/hypertask-network/hypertask/internal/gateway"
	"github.com/hypertask-network/hypertask/internal/health"
	"github.com/hypertask-network/hypertask/internal/history"
	"github.com/hypertask-network/hypertask/internal/logbuf"
	_ "github.com/hypertask-network/hypertask/internal/metrics" // Register Prometheus metrics
	"github.com/hypertask-network/hypertask/internal/project"
	"github.com/hypertask-network/hypertask/internal/store"
	"github.com/hypertask-network/hypertask/internal/wallet"
)

// Daemon is the client runtime. It wires together all services.
type Daemon struct {
	Config  Config
	DB      *store.DB
	Backend *backend.Client
	Wallet  *wallet.Service
	History *history.Service
	Logs    *logbuf.Buffer
	Session *chat.Session
	Engine  *project.Engine
	Health  *health.Checker
	Server  *gateway.Server

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(version, cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(version string, cfg Config) (*Daemon, error) {
	dataDir := cfg.Node.DataDir
	if dataDir == "" {
		dataDir = hypertaskHome()
	}

	db, err := store.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	client := backend.New(cfg.Backend.BaseURL)
	if cfg.Backend.TimeoutSeconds > 0 {
		// Before any request or goroutine; the client is immutable once shared.
		client.HTTPClient.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	}

	w, err := wallet.NewService(db, cfg.Wallet.StartingBalance)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init wallet: %w", err)
	}

	d := &Daemon{
		Config:  cfg,
		DB:      db,
		Backend: client,
		Wallet:  w,
		History: history.NewService(db),
		Logs:    logbuf.New(db, true),
		Session: chat.NewSession(client),
	}

	d.Engine = project.NewEngine(
		project.Config{StageDelay: cfg.Pipeline.StageDelay()},
		client, d.Wallet, d.History, d.Logs,
	)
	d.Health = health.NewChecker(client, db, dataDir)

	d.Server = gateway.NewServer(version, d.Session, d.Engine, d.Wallet, d.History, d.Health, d.Logs)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// Serve starts the HTTP gateway and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Gateway.Host, d.Config.Gateway.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long for the SSE feed
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
		_ = d.DB.Close()
	}()

	fmt.Printf("HyperTask gateway on http://%s\n", addr)
	fmt.Printf("  Backend: %s\n", d.Config.Backend.BaseURL)
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
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
