package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theeman05/SWEN-261-StudentUFund/model"
	"github.com/theeman05/SWEN-261-StudentUFund/notify"
)

func seededStore(t *testing.T, needs ...model.Need) *store {
	t.Helper()
	st := newStore()
	st.ReplaceCatalog(needs)
	return st
}

func loginSupporter(t *testing.T, st *store, username string) {
	t.Helper()
	_, err := st.Signup(username)
	require.NoError(t, err)
	_, err = st.Login(username)
	require.NoError(t, err)
}

func TestCreateNeedConflict(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Blankets", Cost: 5, Stock: 10})

	_, err := st.CreateNeed(model.Need{Name: "Blankets", Cost: 9, Stock: 2})
	assert.ErrorIs(t, err, errConflict)

	created, err := st.CreateNeed(model.Need{Name: "Water", Cost: 2, Stock: 50})
	require.NoError(t, err)
	assert.Equal(t, "Water", created.Name)
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	st := seededStore(t,
		model.Need{Name: "Warm Blankets", Cost: 5, Stock: 10},
		model.Need{Name: "Bottled Water", Cost: 2, Stock: 50},
		model.Need{Name: "Canned Food", Cost: 3, Stock: 20},
	)

	results := st.Search("wa")
	require.Len(t, results, 2)
	assert.Equal(t, "Bottled Water", results[0].Name)
	assert.Equal(t, "Warm Blankets", results[1].Name)

	assert.Len(t, st.Search(""), 3)
	assert.Empty(t, st.Search("zzz"))
}

func TestLoginUnknownSupporter(t *testing.T) {
	st := seededStore(t)

	_, err := st.Login("nobody")
	assert.ErrorIs(t, err, errNotFound)

	// The admin needs no signup.
	admin, err := st.Login(model.AdminUsername)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestSignupTakenUsername(t *testing.T) {
	st := seededStore(t)

	_, err := st.Signup("helen")
	require.NoError(t, err)
	_, err = st.Signup("helen")
	assert.ErrorIs(t, err, errConflict)
	_, err = st.Signup(model.AdminUsername)
	assert.ErrorIs(t, err, errConflict)
}

func TestBasketForbiddenWithoutSupporterSession(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 50})

	_, err := st.Basket()
	assert.ErrorIs(t, err, errForbidden)

	_, err = st.Login(model.AdminUsername)
	require.NoError(t, err)
	_, err = st.AddToBasket("Water")
	assert.ErrorIs(t, err, errForbidden)
}

func TestAddToBasketDefaultsToOne(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 50})
	loginSupporter(t, st, "helen")

	entry, err := st.AddToBasket("Water")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Quantity)

	_, err = st.AddToBasket("Water")
	assert.ErrorIs(t, err, errConflict)
	_, err = st.AddToBasket("Missing")
	assert.ErrorIs(t, err, errNotFound)
}

func TestBasketClampsToStock(t *testing.T) {
	st := seededStore(t,
		model.Need{Name: "Water", Cost: 2, Stock: 5},
		model.Need{Name: "Food", Cost: 3, Stock: 4},
	)
	loginSupporter(t, st, "helen")

	_, err := st.AddToBasket("Water")
	require.NoError(t, err)
	require.NoError(t, st.UpdateBasketEntry(model.Need{Name: "Water", Quantity: 5}))
	_, err = st.AddToBasket("Food")
	require.NoError(t, err)

	// Stock drops and one need disappears behind the supporter's back.
	require.NoError(t, st.UpdateNeed(model.Need{Name: "Water", Cost: 2, Stock: 3}))
	require.NoError(t, st.DeleteNeed("Food"))

	basket, err := st.Basket()
	require.NoError(t, err)
	require.Len(t, basket, 1)
	assert.Equal(t, "Water", basket[0].Name)
	assert.Equal(t, 3, basket[0].Quantity)
	assert.Equal(t, 3, basket[0].Stock)
}

func TestBasketableReportsRemainingStock(t *testing.T) {
	st := seededStore(t,
		model.Need{Name: "Water", Cost: 2, Stock: 5},
		model.Need{Name: "Food", Cost: 3, Stock: 1},
	)
	loginSupporter(t, st, "helen")

	_, err := st.AddToBasket("Water")
	require.NoError(t, err)
	require.NoError(t, st.UpdateBasketEntry(model.Need{Name: "Water", Quantity: 2}))
	_, err = st.AddToBasket("Food")
	require.NoError(t, err)

	addable, err := st.Basketable()
	require.NoError(t, err)
	// Food is fully claimed; Water has 3 of 5 left.
	require.Len(t, addable, 1)
	assert.Equal(t, "Water", addable[0].Name)
	assert.Equal(t, 3, addable[0].Stock)
}

func TestCheckoutCommitsAtomically(t *testing.T) {
	st := seededStore(t,
		model.Need{Name: "Water", Cost: 2, Stock: 5},
		model.Need{Name: "Food", Cost: 3, Stock: 2},
	)
	var events []notify.NeedEvent
	st.onChange = func(e notify.NeedEvent) { events = append(events, e) }
	loginSupporter(t, st, "helen")

	_, err := st.AddToBasket("Water")
	require.NoError(t, err)
	require.NoError(t, st.UpdateBasketEntry(model.Need{Name: "Water", Quantity: 3}))
	_, err = st.AddToBasket("Food")
	require.NoError(t, err)
	require.NoError(t, st.UpdateBasketEntry(model.Need{Name: "Food", Quantity: 2}))
	events = nil

	committed, err := st.Checkout()
	require.NoError(t, err)
	assert.True(t, committed)

	// Water's stock shrank; Food hit zero and left the catalog.
	water, ok := st.Need("Water")
	require.True(t, ok)
	assert.Equal(t, 2, water.Stock)
	_, ok = st.Need("Food")
	assert.False(t, ok)

	basket, err := st.Basket()
	require.NoError(t, err)
	assert.Empty(t, basket)

	receipts := st.ReceiptsOf("helen")
	require.Len(t, receipts, 2)
	assert.Equal(t, 6.0, receipts[0].Cost) // Food: 3 * 2
	assert.Equal(t, 6.0, receipts[1].Cost) // Water: 2 * 3
	assert.Equal(t, 12.0, st.Total("helen"))

	require.Len(t, events, 2)
}

func TestCheckoutRejectsOnStaleQuantity(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 5})
	loginSupporter(t, st, "helen")

	_, err := st.AddToBasket("Water")
	require.NoError(t, err)
	require.NoError(t, st.UpdateBasketEntry(model.Need{Name: "Water", Quantity: 5}))

	// Stock drops after the basket was filled.
	require.NoError(t, st.UpdateNeed(model.Need{Name: "Water", Cost: 2, Stock: 3}))

	committed, err := st.Checkout()
	require.NoError(t, err)
	assert.False(t, committed)

	// Nothing was committed.
	water, ok := st.Need("Water")
	require.True(t, ok)
	assert.Equal(t, 3, water.Stock)
	assert.Empty(t, st.ReceiptsOf("helen"))
}

func TestCheckoutEmptyBasketRejected(t *testing.T) {
	st := seededStore(t)
	loginSupporter(t, st, "helen")

	committed, err := st.Checkout()
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestRepeatFundingMergesReceipts(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 10})
	loginSupporter(t, st, "helen")

	for range 2 {
		_, err := st.AddToBasket("Water")
		require.NoError(t, err)
		require.NoError(t, st.UpdateBasketEntry(model.Need{Name: "Water", Quantity: 3}))
		committed, err := st.Checkout()
		require.NoError(t, err)
		require.True(t, committed)
	}

	receipts := st.ReceiptsOf("helen")
	require.Len(t, receipts, 1)
	assert.Equal(t, 6, receipts[0].Quantity)
	assert.Equal(t, 12.0, receipts[0].Cost)
}

func TestLeaderboardOrdersByTotalFunding(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 100}, model.Need{Name: "Food", Cost: 10, Stock: 100})

	fund := func(username, need string, quantity int) {
		loginSupporter(t, st, username)
		_, err := st.AddToBasket(need)
		require.NoError(t, err)
		require.NoError(t, st.UpdateBasketEntry(model.Need{Name: need, Quantity: quantity}))
		committed, err := st.Checkout()
		require.NoError(t, err)
		require.True(t, committed)
	}

	fund("alice", "Water", 5)  // 10
	fund("bob", "Food", 3)     // 30
	fund("carol", "Water", 10) // 20

	board := st.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, "bob", board[0].SupporterUsername)
	assert.Equal(t, "carol", board[1].SupporterUsername)
	assert.Equal(t, "alice", board[2].SupporterUsername)
}

func TestInboxUpsertsPerNeed(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 5})
	loginSupporter(t, st, "helen")

	// The wire quirk: the sender field carries the recipient; the store
	// records the acting session as the sender.
	st.SendMessage(model.NeedMessage{SenderUsername: "helen", NeedName: "Water", Message: "first"})
	st.Logout()
	st.SendMessage(model.NeedMessage{SenderUsername: "helen", NeedName: "Water", Message: "second"})

	_, err := st.Login("helen")
	require.NoError(t, err)
	inbox, err := st.Inbox()
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "second", inbox[0].Message)
	assert.Equal(t, model.AdminUsername, inbox[0].SenderUsername)

	msg, ok := st.MessageTo("helen", "Water")
	require.True(t, ok)
	assert.Equal(t, "second", msg.Message)

	require.NoError(t, st.DeleteMessage("Water"))
	inbox, err = st.Inbox()
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestReplaceCatalogKeepsBaskets(t *testing.T) {
	st := seededStore(t, model.Need{Name: "Water", Cost: 2, Stock: 5})
	loginSupporter(t, st, "helen")

	_, err := st.AddToBasket("Water")
	require.NoError(t, err)

	st.ReplaceCatalog([]model.Need{{Name: "Water", Cost: 2, Stock: 2}, {Name: "Food", Cost: 3, Stock: 1}})

	basket, err := st.Basket()
	require.NoError(t, err)
	require.Len(t, basket, 1)
	assert.Equal(t, 2, basket[0].Stock)
}
