package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
	"github.com/hypertask-network/hypertask/internal/domain"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run PROMPT",
	Short: "Dispatch a project and review the deliverables",
	Long: `Dispatch a project directly from a prompt, watch the agents work,
then approve or reject the deliverables. The payment stays in escrow
until you decide.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer d.Close()

	prompt := strings.Join(args, " ")
	return dispatchAndReview(cmd.Context(), d, prompt, "")
}

// dispatchAndReview runs the full lifecycle interactively: dispatch,
// live task feed, deliverable listing, then the release decision.
func dispatchAndReview(ctx context.Context, d *daemon.Daemon, prompt, conversationID string) error {
	snapshots, cancel := d.Engine.Subscribe()
	defer cancel()

	p, err := d.Engine.StartProject(ctx, prompt, conversationID)
	if err != nil {
		return err
	}
	fmt.Printf("Project %s dispatched — %s locked in escrow\n\n", p.ID[:8], hyper(p.Transaction.Total))

	printTaskFeed(snapshots)
	d.Engine.Wait()

	if banner := d.Engine.Banner(); banner != "" {
		fmt.Fprintf(os.Stderr, "\n! %s\n", banner)
	}

	current, ok := d.Engine.Current()
	if !ok || current.Status != domain.ProjectReview {
		return nil
	}
	printDeliverables(current)
	return reviewLoop(d, current)
}

// printTaskFeed renders task transitions until the review snapshot.
func printTaskFeed(snapshots <-chan domain.Project) {
	seen := make(map[string]domain.TaskStatus)
	for p := range snapshots {
		for _, t := range p.Tasks {
			if seen[t.ID] == t.Status {
				continue
			}
			seen[t.ID] = t.Status
			marker := "·"
			if t.Status == domain.TaskCompleted {
				marker = "✓"
			}
			fmt.Printf("  %s [%s] %s\n", marker, t.AssignedTo, t.Title)
		}
		if p.Status == domain.ProjectReview {
			return
		}
	}
}

func printDeliverables(p domain.Project) {
	fmt.Printf("\nDeliverables (total %s, burn fee %s):\n", hyper(p.Transaction.Total), hyper(p.Transaction.BurnFee))
	for _, del := range p.Deliverables {
		fmt.Printf("  - %s (%s, by %s)\n", del.Name, del.Type, del.Agent)
		if del.Type == domain.DeliverableText {
			fmt.Printf("    %q\n", del.Content)
		}
	}
}

func reviewLoop(d *daemon.Daemon, p domain.Project) error {
	scanner := newLineScanner(os.Stdin)
	for {
		fmt.Print("\nRelease payment? [a]pprove / [r]eject / re[v]ision: ")
		if !scanner.Scan() {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "a", "approve":
			if err := d.Engine.Approve(); err != nil {
				return err
			}
			w := d.Wallet.Balance()
			fmt.Printf("Payment released: %s (%s burned). Balance: %s\n",
				hyper(p.Transaction.Total), hyper(p.Transaction.BurnFee), hyper(w.Total))
			return nil
		case "r", "reject":
			if err := d.Engine.Reject(); err != nil {
				return err
			}
			fmt.Printf("Rejected — escrow refunded. Balance: %s\n", hyper(d.Wallet.Balance().Total))
			return nil
		case "v", "revision":
			if err := d.Engine.RequestRevision(); err != nil {
				return err
			}
			fmt.Println(d.Engine.Banner())
			return nil
		default:
			fmt.Fprintln(os.Stderr, "Please answer a, r, or v.")
		}
	}
}
