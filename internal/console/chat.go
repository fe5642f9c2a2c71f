package console

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/chat"
)

func (a *app) chatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [MESSAGE]",
		Short: "Talk to Gracey, the site assistant",
		Long:  "With a message, print one answer. Without, read lines from stdin until EOF or \"exit\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := chat.NewConversation(a.env.Client, a.env.Log)
			if len(args) == 1 {
				msg, err := conv.Send(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printf("%s\n", msg.Text)
				return nil
			}

			a.printf("Gracey: %s\n", chat.Greeting)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				a.printf("> ")
				if !scanner.Scan() {
					a.printf("\n")
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					return nil
				}
				if line == "" {
					continue
				}
				msg, err := conv.Send(cmd.Context(), line)
				if err != nil {
					return err
				}
				a.printf("Gracey: %s\n", msg.Text)
			}
		},
	}
}
