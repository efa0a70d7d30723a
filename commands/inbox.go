package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewInboxCommand returns the inbox command tree. Each user holds one
// message slot per need; sending to an occupied slot replaces the message.
func NewInboxCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Read and send per-need messages",
	}
	cmd.AddCommand(
		newInboxListCommand(app),
		newInboxSendCommand(app),
		newInboxDeleteCommand(app),
		newInboxShowCommand(app),
	)
	return cmd
}

func newInboxListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			messages := app.Session.Inbox(cmd.Context())
			if len(messages) == 0 {
				fmt.Fprintln(app.Out, "Your inbox is empty.")
				return nil
			}
			w := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NEED\tFROM\tMESSAGE")
			for _, m := range messages {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.NeedName, m.SenderUsername, m.Message)
			}
			w.Flush()
			return nil
		},
	}
}

func newInboxSendCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "send <to-user> <need> <message...>",
		Short: "Send a message about a need",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			text := strings.Join(args[2:], " ")
			if app.Session.SendMessage(cmd.Context(), text, args[1], args[0]) {
				fmt.Fprintf(app.Out, "Message about %q sent to %s.\n", args[1], args[0])
			}
			return nil
		},
	}
}

func newInboxDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <need>",
		Short: "Delete your message for a need",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			if app.Session.DeleteMessage(cmd.Context(), args[0]) {
				fmt.Fprintf(app.Out, "Deleted your message for %q.\n", args[0])
			}
			return nil
		},
	}
}

func newInboxShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <receiver> <need>",
		Short: "Show the message a user holds for a need",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			msg := app.Session.MessageTo(cmd.Context(), args[0], args[1])
			if msg == nil {
				fmt.Fprintln(app.Out, "No message.")
				return nil
			}
			fmt.Fprintf(app.Out, "From %s about %q: %s\n", msg.SenderUsername, msg.NeedName, msg.Message)
			return nil
		},
	}
}
