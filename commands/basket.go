package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theeman05/SWEN-261-StudentUFund/api"
	"github.com/theeman05/SWEN-261-StudentUFund/basket"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// NewBasketCommand returns the basket command tree. Every subcommand signs
// in as the configured identity and drives a basket engine for one action.
func NewBasketCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "basket",
		Short: "Manage your funding basket",
	}
	cmd.AddCommand(
		newBasketShowCommand(app),
		newBasketAddableCommand(app),
		newBasketAddCommand(app),
		newBasketUpdateCommand(app),
		newBasketRemoveCommand(app),
		newBasketCheckoutCommand(app),
		newBasketWatchCommand(app),
	)
	return cmd
}

func (a *App) newEngine(ctx context.Context) (*basket.Engine, error) {
	user, err := a.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return basket.New(a.Session, user, a.Bus, a.Nav, basket.WithLogger(a.Logger)), nil
}

func newBasketShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your basket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			engine, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			engine.Load(cmd.Context())
			if entries := engine.Entries(); len(entries) > 0 {
				app.printNeeds(entries, true)
			}
			return nil
		},
	}
}

func newBasketAddableCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "addable",
		Short: "List needs you can still add, with remaining stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if _, err := app.RequireUser(cmd.Context()); err != nil {
				return err
			}
			app.printNeeds(app.Session.BasketableNeeds(cmd.Context()), false)
			return nil
		},
	}
}

func newBasketAddCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <need>",
		Short: "Add a need to your basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			engine, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			engine.AddEntry(cmd.Context(), model.Need{Name: args[0]})
			engine.Wait()
			if entries := engine.Entries(); len(entries) > 0 {
				fmt.Fprintf(app.Out, "Added %q to your basket.\n", args[0])
			}
			return nil
		},
	}
}

func newBasketUpdateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update <need> <quantity>",
		Short: "Set how many of a need you want to fund",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			engine, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}

			quantity, convErr := strconv.Atoi(args[1])
			if convErr != nil {
				app.Bus.Publish(basket.MsgInvalidQuantity)
				return nil
			}

			// The entry's current stock bounds the quantity check.
			entry := app.Session.BasketNeed(cmd.Context(), args[0])
			if entry == nil {
				app.Bus.Publish(api.MsgNeedNotFound)
				return nil
			}
			entry.Quantity = quantity
			engine.UpdateEntry(cmd.Context(), *entry)
			engine.Wait()
			return nil
		},
	}
}

func newBasketRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <need>",
		Short: "Remove a need from your basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			engine, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			engine.Load(cmd.Context())
			engine.RemoveEntry(cmd.Context(), model.Need{Name: args[0]})
			engine.Wait()
			return nil
		},
	}
}

func newBasketCheckoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Fund everything in your basket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			engine, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			engine.Load(cmd.Context())
			if len(engine.Entries()) == 0 {
				return nil
			}
			engine.Checkout(cmd.Context())
			engine.Wait()
			return nil
		},
	}
}
