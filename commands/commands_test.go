package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theeman05/SWEN-261-StudentUFund/api"
	"github.com/theeman05/SWEN-261-StudentUFund/basket"
	"github.com/theeman05/SWEN-261-StudentUFund/config"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
	"github.com/theeman05/SWEN-261-StudentUFund/notify"
)

func newTestApp(t *testing.T, handler http.Handler, username string) (*App, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.Server.URL = ts.URL
	cfg.Server.Timeout = 5 * time.Second
	cfg.Identity.Username = username

	var out bytes.Buffer
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &out)
	return app, &out
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestNeedsListPrintsTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /needs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.Need{
			{Name: "Water", Type: "supply", Cost: 2, Stock: 50},
		})
	})
	app, out := newTestApp(t, mux, "")

	require.NoError(t, runCommand(t, NewNeedsCommand(app), "list"))
	assert.Contains(t, out.String(), "Water")
	assert.Contains(t, out.String(), "NAME")
}

func TestNeedsCreateRejectsBadFields(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ })
	app, out := newTestApp(t, handler, "")

	require.NoError(t, runCommand(t, NewNeedsCommand(app), "create", "  ", "abc", "-1"))
	// All three field problems surface as one combined message, and the
	// server is never contacted.
	assert.Contains(t, out.String(), model.MsgInvalidName)
	assert.Contains(t, out.String(), model.MsgInvalidCost)
	assert.Contains(t, out.String(), model.MsgInvalidStock)
	assert.Zero(t, calls)
}

func TestNeedsCreateConflictMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /needs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	})
	app, out := newTestApp(t, mux, "")

	require.NoError(t, runCommand(t, NewNeedsCommand(app), "create", "Water", "2", "50"))
	assert.Contains(t, out.String(), "A need with this name already exists!")
}

func TestBasketUpdateInvalidQuantityText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.User{Username: r.PathValue("username")})
	})
	app, out := newTestApp(t, mux, "helen")

	require.NoError(t, runCommand(t, NewBasketCommand(app), "update", "Water", "ten"))
	assert.Contains(t, out.String(), basket.MsgInvalidQuantity)
}

func TestBasketUpdateOverStock(t *testing.T) {
	var updates int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.User{Username: r.PathValue("username")})
	})
	mux.HandleFunc("GET /users/basket/{name}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.Need{Name: r.PathValue("name"), Quantity: 1, Stock: 3})
	})
	mux.HandleFunc("PUT /users/basket", func(w http.ResponseWriter, r *http.Request) { updates++ })
	app, out := newTestApp(t, mux, "helen")

	require.NoError(t, runCommand(t, NewBasketCommand(app), "update", "Water", "5"))
	assert.Contains(t, out.String(), basket.MsgInvalidQuantity)
	assert.Zero(t, updates)
}

func TestCheckoutRejectionRefreshesBasket(t *testing.T) {
	basketPayload := []model.Need{{Name: "Water", Quantity: 5, Stock: 5}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.User{Username: r.PathValue("username")})
	})
	mux.HandleFunc("GET /users/basket", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(basketPayload)
	})
	mux.HandleFunc("GET /users/checkout", func(w http.ResponseWriter, r *http.Request) {
		// Stock moved; the server rejects and the refreshed basket is
		// clamped.
		basketPayload = []model.Need{{Name: "Water", Quantity: 3, Stock: 3}}
		_ = json.NewEncoder(w).Encode(false)
	})
	app, out := newTestApp(t, mux, "helen")

	require.NoError(t, runCommand(t, NewBasketCommand(app), "checkout"))
	assert.Contains(t, out.String(), basket.MsgBasketRefreshed)
}

func TestCheckoutSuccessConfirms(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.User{Username: r.PathValue("username")})
	})
	mux.HandleFunc("GET /users/basket", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.Need{{Name: "Water", Quantity: 2, Stock: 5}})
	})
	mux.HandleFunc("GET /users/checkout", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(true)
	})
	app, out := newTestApp(t, mux, "helen")

	require.NoError(t, runCommand(t, NewBasketCommand(app), "checkout"))
	assert.Contains(t, out.String(), "Checkout complete")
}

func TestBasketUpdateMissingNeedUsesBus(t *testing.T) {
	var updates int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.User{Username: r.PathValue("username")})
	})
	mux.HandleFunc("GET /users/basket/{name}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("PUT /users/basket", func(w http.ResponseWriter, r *http.Request) { updates++ })
	app, out := newTestApp(t, mux, "helen")

	require.NoError(t, runCommand(t, NewBasketCommand(app), "update", "Ghost", "2"))
	// The miss lands in the single message slot like every other failure.
	assert.Equal(t, api.MsgNeedNotFound, app.Bus.Current())
	assert.Contains(t, out.String(), api.MsgNeedNotFound)
	assert.Zero(t, updates)
}

func TestWatchRefreshesBasketOnMatchingEvent(t *testing.T) {
	var basketCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.User{Username: r.PathValue("username")})
	})
	mux.HandleFunc("GET /users/basket", func(w http.ResponseWriter, r *http.Request) {
		basketCalls++
		entries := []model.Need{{Name: "Water", Quantity: 5, Stock: 5}}
		if basketCalls > 1 {
			// Stock dropped behind the supporter's back.
			entries = []model.Need{{Name: "Water", Quantity: 3, Stock: 3}}
		}
		_ = json.NewEncoder(w).Encode(entries)
	})
	app, out := newTestApp(t, mux, "helen")

	ctx := context.Background()
	engine, err := app.newEngine(ctx)
	require.NoError(t, err)
	engine.Load(ctx)
	require.Equal(t, 1, basketCalls)

	// Events for needs outside the basket do not touch the server.
	refreshed := app.refreshOnEvent(ctx, engine, notify.NeedEvent{
		Type: notify.EventUpdated,
		Need: model.Need{Name: "Food", Stock: 1},
	})
	assert.False(t, refreshed)
	assert.Equal(t, 1, basketCalls)

	// An event naming a basket entry reloads the authoritative basket.
	refreshed = app.refreshOnEvent(ctx, engine, notify.NeedEvent{
		Type: notify.EventUpdated,
		Need: model.Need{Name: "Water", Stock: 3},
	})
	assert.True(t, refreshed)
	assert.Equal(t, 2, basketCalls)
	require.Len(t, engine.Entries(), 1)
	assert.Equal(t, 3, engine.Entries()[0].Quantity)
	assert.Contains(t, out.String(), `"Water" changed`)
}

func TestLoginWithoutIdentityFails(t *testing.T) {
	app, _ := newTestApp(t, http.NewServeMux(), "")
	err := runCommand(t, NewLoginCommand(app))
	require.Error(t, err)
}

func TestReceiptsTotal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /receipts/{username}/total", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(42.5)
	})
	app, out := newTestApp(t, mux, "")

	require.NoError(t, runCommand(t, NewReceiptsCommand(app), "total", "helen"))
	assert.Contains(t, out.String(), "helen has funded 42.50 in total.")
}
