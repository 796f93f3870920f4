// Package daemon manages the HyperTask client lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hypertask-network/hypertask/internal/backend"
)

// Config holds all client configuration.
type Config struct {
	Node      NodeConfig      `toml:"node"`
	Backend   BackendConfig   `toml:"backend"`
	Gateway   GatewayConfig   `toml:"gateway"`
	Wallet    WalletConfig    `toml:"wallet"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// NodeConfig identifies this client.
type NodeConfig struct {
	Name    string `toml:"name"`
	DataDir string `toml:"data_dir"`
}

// BackendConfig controls the execution API client.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// GatewayConfig controls the local HTTP gateway.
type GatewayConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// WalletConfig controls the simulated wallet.
type WalletConfig struct {
	StartingBalance float64 `toml:"starting_balance"`
}

// PipelineConfig controls the execution pipeline.
type PipelineConfig struct {
	StageDelayMS int `toml:"stage_delay_ms"`
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// StageDelay returns the configured inter-stage delay.
func (c PipelineConfig) StageDelay() time.Duration {
	return time.Duration(c.StageDelayMS) * time.Millisecond
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Node: NodeConfig{
			Name:    "hypertask",
			DataDir: hypertaskHome(),
		},
		Backend: BackendConfig{
			BaseURL:        backend.DefaultBaseURL,
			TimeoutSeconds: 30,
		},
		Gateway: GatewayConfig{
			Host:        "127.0.0.1",
			Port:        8090,
			CORSOrigins: []string{"*"},
		},
		Wallet: WalletConfig{
			StartingBalance: 500.0,
		},
		Pipeline: PipelineConfig{
			StageDelayMS: 1200,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads config from ~/.hypertask/config.toml, falling back
// to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(hypertaskHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Node.DataDir == "" {
		cfg.Node.DataDir = hypertaskHome()
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.hypertask/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(hypertaskHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// hypertaskHome returns the client data directory.
func hypertaskHome() string {
	if env := os.Getenv("HYPERTASK_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hypertask")
}

// Home is exported for use by other packages.
func Home() string {
	return hypertaskHome()
}
