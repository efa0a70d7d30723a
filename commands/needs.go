package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// NewNeedsCommand returns the needs command tree: the catalog operations an
// administrator manages and the read paths every user has.
func NewNeedsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "needs",
		Short: "Browse and manage the needs catalog",
	}
	cmd.AddCommand(
		newNeedsListCommand(app),
		newNeedsGetCommand(app),
		newNeedsSearchCommand(app),
		newNeedsCreateCommand(app),
		newNeedsUpdateCommand(app),
		newNeedsDeleteCommand(app),
	)
	return cmd
}

func newNeedsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the whole catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			app.printNeeds(app.Inventory.Needs(cmd.Context()), false)
			return nil
		},
	}
}

func newNeedsGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show one need",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			need := app.Inventory.Need(cmd.Context(), args[0])
			if need == nil {
				fmt.Fprintln(app.Out, "Need not found.")
				return nil
			}
			app.printNeeds([]model.Need{*need}, false)
			return nil
		},
	}
}

func newNeedsSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "List needs whose name contains the term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			app.printNeeds(app.Inventory.Search(cmd.Context(), args[0]), false)
			return nil
		},
	}
}

// parseNeed builds a Need from command arguments, surfacing field problems
// through the bus as one combined message.
func (a *App) parseNeed(args []string) (model.Need, bool) {
	need := model.Need{Name: strings.TrimSpace(args[0])}
	var problems []string

	cost, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		problems = append(problems, model.MsgInvalidCost)
	}
	need.Cost = cost

	stock, err := strconv.Atoi(args[2])
	if err != nil {
		problems = append(problems, model.MsgInvalidStock)
	}
	need.Stock = stock

	if len(args) > 3 {
		need.Type = args[3]
	}

	problems = append(problems, need.ValidateFields()...)
	if len(problems) > 0 {
		a.Bus.Publish(strings.Join(dedupe(problems), " "))
		return model.Need{}, false
	}
	return need, true
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func newNeedsCreateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <cost> <stock> [type]",
		Short: "Add a need to the catalog",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			need, ok := app.parseNeed(args)
			if !ok {
				return nil
			}
			if created := app.Inventory.Create(cmd.Context(), need); created != nil {
				fmt.Fprintf(app.Out, "Created need %q.\n", created.Name)
			}
			return nil
		},
	}
}

func newNeedsUpdateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update <name> <cost> <stock> [type]",
		Short: "Replace a need's cost, stock, and type",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			need, ok := app.parseNeed(args)
			if !ok {
				return nil
			}
			if app.Inventory.Update(cmd.Context(), need) {
				fmt.Fprintf(app.Out, "Updated need %q.\n", need.Name)
			}
			return nil
		},
	}
}

func newNeedsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a need from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if app.Inventory.Delete(cmd.Context(), args[0]) {
				fmt.Fprintf(app.Out, "Deleted need %q.\n", args[0])
			}
			return nil
		},
	}
}
