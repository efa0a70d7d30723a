package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theeman05/SWEN-261-StudentUFund/errbus"
	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

// spyNav records back-navigations triggered by Forbidden failures.
type spyNav struct{ backs atomic.Int32 }

func (n *spyNav) Back() { n.backs.Add(1) }

func jsonResponse(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
}

func statusOnly(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(status), status)
	}
}

func TestNeedsListsCatalog(t *testing.T) {
	ts := httptest.NewServer(jsonResponse(http.StatusOK, []model.Need{
		{Name: "Water", Cost: 2, Stock: 50},
		{Name: "Food", Cost: 3, Stock: 20},
	}))
	defer ts.Close()

	bus := errbus.New()
	c := NewInventoryClient(ts.URL, bus, nil)

	needs := c.Needs(context.Background())
	require.Len(t, needs, 2)
	assert.Equal(t, "Water", needs[0].Name)
	assert.Empty(t, bus.Current())
}

func TestNeedsFailureIsQuiet(t *testing.T) {
	ts := httptest.NewServer(statusOnly(http.StatusInternalServerError))
	defer ts.Close()

	bus := errbus.New()
	c := NewInventoryClient(ts.URL, bus, nil)

	assert.Nil(t, c.Needs(context.Background()))
	// A 500 always surfaces the capacity message.
	assert.Equal(t, MsgServerCapacity, bus.Current())
}

func TestNeedAbsenceIsSilent(t *testing.T) {
	ts := httptest.NewServer(statusOnly(http.StatusNotFound))
	defer ts.Close()

	bus := errbus.New()
	c := NewInventoryClient(ts.URL, bus, nil)

	assert.Nil(t, c.Need(context.Background(), "Missing"))
	assert.Empty(t, bus.Current())
}

func TestNeedEscapesName(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		jsonResponse(http.StatusOK, model.Need{Name: "Warm Blankets"})(w, r)
	}))
	defer ts.Close()

	c := NewInventoryClient(ts.URL, errbus.New(), nil)
	need := c.Need(context.Background(), "Warm Blankets")
	require.NotNil(t, need)
	assert.Equal(t, "/needs/Warm%20Blankets", gotPath)
}

func TestSearchBlankTermSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		jsonResponse(http.StatusOK, []model.Need{})(w, r)
	}))
	defer ts.Close()

	c := NewInventoryClient(ts.URL, errbus.New(), nil)
	assert.Nil(t, c.Search(context.Background(), ""))
	assert.Nil(t, c.Search(context.Background(), "   "))
	assert.Equal(t, int32(0), calls.Load())
}

func TestSearchQueriesByName(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		jsonResponse(http.StatusOK, []model.Need{{Name: "Bottled Water"}})(w, r)
	}))
	defer ts.Close()

	c := NewInventoryClient(ts.URL, errbus.New(), nil)
	results := c.Search(context.Background(), "wa ter")
	require.Len(t, results, 1)
	assert.Equal(t, "name=wa+ter", gotQuery)
}

func TestCreateDuplicatePublishesExists(t *testing.T) {
	ts := httptest.NewServer(statusOnly(http.StatusConflict))
	defer ts.Close()

	bus := errbus.New()
	c := NewInventoryClient(ts.URL, bus, nil)

	assert.Nil(t, c.Create(context.Background(), model.Need{Name: "Water"}))
	assert.Equal(t, MsgNeedExists, bus.Current())
}

func TestCreateReturnsServerCopy(t *testing.T) {
	ts := httptest.NewServer(jsonResponse(http.StatusCreated, model.Need{Name: "Water", Cost: 2, Stock: 50}))
	defer ts.Close()

	bus := errbus.New()
	c := NewInventoryClient(ts.URL, bus, nil)

	created := c.Create(context.Background(), model.Need{Name: "Water", Cost: 2, Stock: 50})
	require.NotNil(t, created)
	assert.Equal(t, 50, created.Stock)
	assert.Empty(t, bus.Current())
}

func TestUpdateMissingPublishesNotFound(t *testing.T) {
	ts := httptest.NewServer(statusOnly(http.StatusNotFound))
	defer ts.Close()

	bus := errbus.New()
	c := NewInventoryClient(ts.URL, bus, nil)

	assert.False(t, c.Update(context.Background(), model.Need{Name: "Missing"}))
	assert.Equal(t, MsgNeedNotFound, bus.Current())
}

func TestDeleteForbiddenNavigatesBack(t *testing.T) {
	ts := httptest.NewServer(statusOnly(http.StatusForbidden))
	defer ts.Close()

	bus := errbus.New()
	nav := &spyNav{}
	c := NewInventoryClient(ts.URL, bus, nav)

	assert.False(t, c.Delete(context.Background(), "Water"))
	assert.Equal(t, int32(1), nav.backs.Load())
	assert.Empty(t, bus.Current())
}
