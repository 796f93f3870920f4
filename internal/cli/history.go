package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
)

func init() {
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed projects",
	RunE:  runHistory,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete one history entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE:  runHistoryClear,
}

func runHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	items, err := d.History.List()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No completed projects yet. Run 'hypertask run <prompt>' to start one.")
		return nil
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"ID", "When", "Prompt", "Status", "Cost", "Deliverables"})
	for _, item := range items {
		tw.AppendRow(table.Row{
			item.ID[:8],
			item.Timestamp,
			item.Prompt,
			item.Status,
			hyper(item.Cost),
			len(item.Deliverables),
		})
	}
	tw.Render()
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	// Allow the 8-char prefix shown by the list.
	id := args[0]
	if len(id) < 36 {
		items, err := d.History.List()
		if err != nil {
			return err
		}
		for _, item := range items {
			if len(item.ID) >= len(id) && item.ID[:len(id)] == id {
				id = item.ID
				break
			}
		}
	}

	if err := d.History.Delete(id); err != nil {
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.History.Clear(); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}
