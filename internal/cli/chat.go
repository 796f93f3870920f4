package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hypertask-network/hypertask/internal/daemon"
	"github.com/hypertask-network/hypertask/internal/domain"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Describe a project in an interactive conversation",
	Long: `Chat with the marketplace to scope a project. Once the agents have
enough detail, type /run to dispatch it, or /bye to leave.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(rootCmd.Version)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer d.Close()

	fmt.Println(">>> Describe your project (type /run to dispatch, /bye to exit)")

	scanner := newLineScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()

		switch input {
		case "/bye", "/exit", "/quit":
			fmt.Println("Goodbye!")
			return nil
		case "/run":
			prompt := lastUserMessage(d)
			if prompt == "" {
				fmt.Fprintln(os.Stderr, "Nothing to dispatch yet — describe the project first.")
				continue
			}
			conversationID := ""
			if d.Session.Ready() {
				conversationID = d.Session.ConversationID()
			}
			return dispatchAndReview(cmd.Context(), d, prompt, conversationID)
		case "":
			continue
		}

		reply, err := d.Session.Send(cmd.Context(), input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(reply.Content)
		if d.Session.Ready() {
			fmt.Println("(ready to dispatch — type /run to start)")
		}
		fmt.Println()
	}
	return nil
}

func lastUserMessage(d *daemon.Daemon) string {
	messages := d.Session.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
