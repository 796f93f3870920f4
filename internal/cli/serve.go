package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Expose Prometheus /metrics")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local HTTP gateway",
	Long:  `Start the JSON gateway used by web front-ends, with a live SSE project feed.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	if serveHost != "" {
		cfg.Gateway.Host = serveHost
	}
	if servePort > 0 {
		cfg.Gateway.Port = servePort
	}
	if serveMetrics {
		cfg.Telemetry.Prometheus = true
	}

	d, err := daemon.NewWithConfig(rootCmd.Version, cfg)
	if err != nil {
		return err
	}

	return d.Serve(context.Background())
}
