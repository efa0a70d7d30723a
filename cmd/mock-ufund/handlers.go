package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theeman05/SWEN-261-StudentUFund/model"
)

type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	conflicts prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ufund_requests_total",
			Help: "API requests served, by route pattern and status code.",
		}, []string{"route", "code"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "ufund_checkout_conflicts_total",
			Help: "Checkouts rejected because basket quantities exceeded stock.",
		}),
	}
}

// statusWriter captures the response code for the request counter.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type server struct {
	store   *store
	metrics *metrics
	logger  *slog.Logger
}

func newMux(s *server) *http.ServeMux {
	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			h(sw, r)
			s.metrics.requests.WithLabelValues(pattern, strconv.Itoa(sw.code)).Inc()
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", sw.code)
		})
	}

	route("GET /needs", s.handleNeeds)
	route("GET /needs/{$}", s.handleSearch)
	route("GET /needs/{name}", s.handleNeed)
	route("POST /needs", s.handleCreateNeed)
	route("PUT /needs", s.handleUpdateNeed)
	route("DELETE /needs/{name}", s.handleDeleteNeed)

	route("POST /users", s.handleSignup)
	route("GET /users/logout", s.handleLogout)
	route("GET /users/basket", s.handleBasket)
	route("GET /users/basketable", s.handleBasketable)
	route("GET /users/basket/{name}", s.handleBasketNeed)
	route("POST /users/basket", s.handleAddToBasket)
	route("PUT /users/basket", s.handleUpdateBasket)
	route("DELETE /users/basket/{name}", s.handleRemoveFromBasket)
	route("GET /users/checkout", s.handleCheckout)
	route("GET /users/inbox", s.handleInbox)
	route("POST /users/inbox", s.handleSendMessage)
	route("DELETE /users/inbox/{needName}", s.handleDeleteMessage)
	route("GET /users/{receiver}/inbox/{needName}", s.handleMessageTo)
	route("GET /users/{username}", s.handleLogin)

	route("GET /receipts", s.handleReceipts)
	route("GET /receipts/sorted", s.handleLeaderboard)
	route("GET /receipts/{username}/total", s.handleTotal)
	route("GET /receipts/{username}", s.handleReceiptsOf)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return mux
}

func (s *server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, errConflict):
		http.Error(w, "conflict", http.StatusConflict)
	case errors.Is(err, errForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// --- needs ---

func (s *server) handleNeeds(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Needs())
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Search(r.URL.Query().Get("name")))
}

func (s *server) handleNeed(w http.ResponseWriter, r *http.Request) {
	need, ok := s.store.Need(r.PathValue("name"))
	if !ok {
		s.writeError(w, errNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, need)
}

func (s *server) handleCreateNeed(w http.ResponseWriter, r *http.Request) {
	var need model.Need
	if err := readJSON(r, &need); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := s.store.CreateNeed(need)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateNeed(w http.ResponseWriter, r *http.Request) {
	var need model.Need
	if err := readJSON(r, &need); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.UpdateNeed(need); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, need)
}

func (s *server) handleDeleteNeed(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteNeed(r.PathValue("name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// --- session ---

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.Login(r.PathValue("username"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var username string
	if err := readJSON(r, &username); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	user, err := s.store.Signup(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout()
	s.writeJSON(w, http.StatusOK, true)
}

// --- basket ---

func (s *server) handleBasket(w http.ResponseWriter, r *http.Request) {
	basket, err := s.store.Basket()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, basket)
}

func (s *server) handleBasketable(w http.ResponseWriter, r *http.Request) {
	needs, err := s.store.Basketable()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, needs)
}

func (s *server) handleBasketNeed(w http.ResponseWriter, r *http.Request) {
	need, err := s.store.BasketNeed(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, need)
}

func (s *server) handleAddToBasket(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := readJSON(r, &name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := s.store.AddToBasket(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, entry)
}

func (s *server) handleUpdateBasket(w http.ResponseWriter, r *http.Request) {
	var need model.Need
	if err := readJSON(r, &need); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.UpdateBasketEntry(need); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, need)
}

func (s *server) handleRemoveFromBasket(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveFromBasket(r.PathValue("name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	committed, err := s.store.Checkout()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !committed {
		s.metrics.conflicts.Inc()
	}
	s.writeJSON(w, http.StatusOK, committed)
}

// --- inbox ---

func (s *server) handleInbox(w http.ResponseWriter, r *http.Request) {
	inbox, err := s.store.Inbox()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inbox)
}

func (s *server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var msg model.NeedMessage
	if err := readJSON(r, &msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.store.SendMessage(msg)
	s.writeJSON(w, http.StatusCreated, msg)
}

func (s *server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMessage(r.PathValue("needName")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) handleMessageTo(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.store.MessageTo(r.PathValue("receiver"), r.PathValue("needName"))
	if !ok {
		s.writeError(w, errNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, msg)
}

// --- receipts ---

func (s *server) handleReceipts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Receipts())
}

func (s *server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Leaderboard())
}

func (s *server) handleReceiptsOf(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.ReceiptsOf(r.PathValue("username")))
}

func (s *server) handleTotal(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Total(r.PathValue("username")))
}
