package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReceiptsCommand returns the receipts command tree.
func NewReceiptsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "View funding receipts",
	}
	cmd.AddCommand(
		newReceiptsListCommand(app),
		newReceiptsUserCommand(app),
		newReceiptsLeaderboardCommand(app),
		newReceiptsTotalCommand(app),
	)
	return cmd
}

func newReceiptsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every receipt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			app.printReceipts(app.Receipts.Receipts(cmd.Context()))
			return nil
		},
	}
}

func newReceiptsUserCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "user <username>",
		Short: "List one supporter's receipts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			app.printReceipts(app.Receipts.ReceiptsOf(cmd.Context(), args[0]))
			return nil
		},
	}
}

func newReceiptsLeaderboardCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "List receipts ranked by each supporter's total funding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			app.printReceipts(app.Receipts.Leaderboard(cmd.Context()))
			return nil
		},
	}
}

func newReceiptsTotalCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "total <username>",
		Short: "Show a supporter's total funded amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			total := app.Receipts.Total(cmd.Context(), args[0])
			fmt.Fprintf(app.Out, "%s has funded %.2f in total.\n", args[0], total)
			return nil
		},
	}
}
