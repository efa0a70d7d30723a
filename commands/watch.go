package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theeman05/SWEN-261-StudentUFund/basket"
	"github.com/theeman05/SWEN-261-StudentUFund/notify"
)

// newBasketWatchCommand follows the need-change feed and refreshes the
// basket whenever a need in it changes, so stock conflicts surface before
// checkout instead of only at checkout.
func newBasketWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh your basket as its needs change on the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			url := app.Config.Notify.URL
			if url == "" {
				return fmt.Errorf("no feed configured: set notify.url in the config")
			}

			engine, err := app.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			engine.Load(cmd.Context())
			if len(engine.Entries()) == 0 {
				return nil
			}
			app.printNeeds(engine.Entries(), true)

			sub, err := notify.NewSubscriber(url, app.Logger)
			if err != nil {
				return fmt.Errorf("connecting to feed: %w", err)
			}
			defer sub.Close()

			// NATS delivers callbacks for one subscription in order, so
			// the engine sees no concurrent mutation.
			err = sub.Subscribe(func(event notify.NeedEvent) {
				app.refreshOnEvent(cmd.Context(), engine, event)
			})
			if err != nil {
				return fmt.Errorf("subscribing to feed: %w", err)
			}

			fmt.Fprintln(app.Out, "Watching your basket for need changes. Press Ctrl-C to stop.")
			<-cmd.Context().Done()
			engine.Wait()
			return nil
		},
	}
}

// refreshOnEvent reloads the basket when the event names one of its
// entries. Events for needs outside the basket are ignored. Reports whether
// a refresh happened.
func (a *App) refreshOnEvent(ctx context.Context, engine *basket.Engine, event notify.NeedEvent) bool {
	inBasket := false
	for _, entry := range engine.Entries() {
		if entry.Name == event.Need.Name {
			inBasket = true
			break
		}
	}
	if !inBasket {
		return false
	}

	fmt.Fprintf(a.Out, "%q changed (%s); refreshing your basket.\n", event.Need.Name, event.Type)
	engine.Load(ctx)
	if entries := engine.Entries(); len(entries) > 0 {
		a.printNeeds(entries, true)
	}
	return true
}
