// Package commands implements the ufund CLI subcommands. Each command runs
// one client operation against the server, prints its result, and lets the
// shared error bus surface any user-facing failure message.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"text/tabwriter"

	"github.com/theeman05/SWEN-261-StudentUFund/api"
	"github.com/theeman05/SWEN-261-StudentUFund/config"
	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// ScreenNav adapts view navigation to a line-oriented terminal. Back and
// the confirmation destination become printed transitions.
type ScreenNav struct {
	out io.Writer
}

func (n *ScreenNav) Back() {
	fmt.Fprintln(n.out, "(returning to the previous screen)")
}

func (n *ScreenNav) GotoConfirmation() {
	fmt.Fprintln(n.out, "Checkout complete. Thank you for your support!")
}

// App holds the wired clients and shared state every subcommand uses.
type App struct {
	Config    *config.Config
	Bus       *errbus.Bus
	Nav       *ScreenNav
	Inventory *api.InventoryClient
	Session   *api.SessionClient
	Receipts  *api.ReceiptClient
	Logger    *slog.Logger
	Out       io.Writer
}

// Init wires the clients against cfg. It is separate from construction so
// the root command can create the App before flags are parsed.
func (a *App) Init(cfg *config.Config, logger *slog.Logger, out io.Writer) {
	bus := errbus.New()
	nav := &ScreenNav{out: out}
	opts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: cfg.Server.Timeout}),
		api.WithLogger(logger),
	}

	a.Config = cfg
	a.Bus = bus
	a.Nav = nav
	a.Inventory = api.NewInventoryClient(cfg.Server.URL, bus, nav, opts...)
	a.Session = api.NewSessionClient(cfg.Server.URL, bus, nav, opts...)
	a.Receipts = api.NewReceiptClient(cfg.Server.URL, bus, nav, opts...)
	a.Logger = logger
	a.Out = out

	bus.Subscribe(func(msg string) {
		if msg != "" {
			fmt.Fprintln(out, msg)
		}
	})
}

// NewApp returns a fully wired App.
func NewApp(cfg *config.Config, logger *slog.Logger, out io.Writer) *App {
	a := &App{}
	a.Init(cfg, logger, out)
	return a
}

// Reset clears the previous action's message slot. Every subcommand calls
// it before doing work so stale messages never leak across actions.
func (a *App) Reset() {
	a.Bus.Clear()
}

// RequireUser establishes the configured identity's session and returns the
// signed-in user.
func (a *App) RequireUser(ctx context.Context) (model.User, error) {
	username := a.Config.Identity.Username
	if username == "" {
		return model.User{}, fmt.Errorf("no identity configured: set identity.username in the config or pass --identity")
	}
	user := a.Session.Login(ctx, username)
	if user == nil {
		return model.User{}, fmt.Errorf("could not sign in as %q", username)
	}
	return *user, nil
}

func (a *App) printNeeds(needs []model.Need, withQuantity bool) {
	if len(needs) == 0 {
		fmt.Fprintln(a.Out, "No needs to show.")
		return
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	if withQuantity {
		fmt.Fprintln(w, "NAME\tTYPE\tCOST\tQUANTITY\tSTOCK")
		for _, n := range needs {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%d\n", n.Name, n.Type, n.Cost, n.Quantity, n.Stock)
		}
	} else {
		fmt.Fprintln(w, "NAME\tTYPE\tCOST\tSTOCK")
		for _, n := range needs {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", n.Name, n.Type, n.Cost, n.Stock)
		}
	}
	w.Flush()
}

func (a *App) printReceipts(receipts []model.Receipt) {
	if len(receipts) == 0 {
		fmt.Fprintln(a.Out, "No receipts to show.")
		return
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SUPPORTER\tNEED\tQUANTITY\tFUNDED")
	for _, r := range receipts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", r.SupporterUsername, r.Name, r.Quantity, r.Cost)
	}
	w.Flush()
}
