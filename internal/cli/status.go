package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend connectivity and client state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	d.Health.RunOnce(cmd.Context())
	for _, s := range d.Health.Statuses() {
		mark := "ok"
		if !s.Healthy {
			mark = "FAIL (" + s.Error + ")"
		}
		fmt.Printf("%-10s %s\n", s.Name, mark)
	}

	w := d.Wallet.Balance()
	fmt.Printf("\nWallet: %s total, %s locked\n", hyper(w.Total), hyper(w.Locked))

	if p, ok := d.Engine.Current(); ok {
		fmt.Printf("Active project: %s (%s)\n", p.ID[:8], p.Status)
	} else {
		fmt.Println("No active project.")
	}
	return nil
}
