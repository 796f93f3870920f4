package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
)

func init() {
	rootCmd.AddCommand(agentsCmd)
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List available agents and their rates",
	RunE:  runAgents,
}

func runAgents(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "Name", "Specialty", "Cost", "Status"})
	for _, a := range d.Engine.Roster(cmd.Context()) {
		tw.AppendRow(table.Row{a.ID, a.Icon + " " + a.Name, a.Specialty, hyper(a.Cost), a.Status})
	}
	tw.Render()
	return nil
}
