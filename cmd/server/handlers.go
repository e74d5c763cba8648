package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"trading-personality/internal/database"
	"trading-personality/internal/features"
	"trading-personality/internal/models"
	"trading-personality/internal/positions"
)

// ProfileReader is the read side of the profile store.
type ProfileReader interface {
	Accounts() ([]string, error)
	LoadTrades(account string) ([]models.Trade, error)
	LatestProfile(account string) (*models.ProfileRecord, error)
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log   *zap.Logger
	store ProfileReader
	now   func() time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store ProfileReader) *APIHandler {
	return &APIHandler{log: log, store: store, now: time.Now}
}

// Register mounts the endpoints on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.StatusHandler)
	mux.HandleFunc("GET /api/accounts", h.AccountsHandler)
	mux.HandleFunc("GET /api/accounts/{account}/trades", h.TradesHandler)
	mux.HandleFunc("GET /api/accounts/{account}/profile", h.ProfileHandler)
	mux.HandleFunc("GET /api/accounts/{account}/statistics", h.StatisticsHandler)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("Failed to write response", zap.Error(err))
	}
}

// StatusHandler reports liveness.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// AccountsHandler lists the accounts with stored trades.
func (h *APIHandler) AccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.Accounts()
	if err != nil {
		h.log.Error("Failed to list accounts", zap.Error(err))
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	h.writeJSON(w, accounts)
}

// TradesHandler returns an account's trades, most recent first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	trades, err := h.store.LoadTrades(account)
	if err != nil {
		h.log.Error("Failed to get trades from database", zap.String("account", account), zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	reversed := make([]models.Trade, len(trades))
	for i, t := range trades {
		reversed[len(trades)-1-i] = t
	}
	h.writeJSON(w, reversed)
}

// ProfileResponse is the structure for the profile endpoint.
type ProfileResponse struct {
	RunID        string          `json:"run_id"`
	Account      string          `json:"account"`
	CreatedAt    time.Time       `json:"created_at"`
	Dominant     string          `json:"dominant"`
	Confidence   float64         `json:"confidence"`
	Method       string          `json:"method"`
	Traits       json.RawMessage `json:"traits,omitempty"`
	Distribution json.RawMessage `json:"distribution,omitempty"`
	Holdings     json.RawMessage `json:"holdings,omitempty"`
	Features     json.RawMessage `json:"features,omitempty"`
}

// ProfileHandler returns the latest stored profile of an account.
func (h *APIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	rec, err := h.store.LatestProfile(account)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "No profile for account", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to get profile", zap.String("account", account), zap.Error(err))
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}

	resp := ProfileResponse{
		RunID:        rec.RunID,
		Account:      rec.Account,
		CreatedAt:    rec.CreatedAt,
		Dominant:     rec.Dominant,
		Confidence:   rec.Confidence,
		Method:       rec.Method,
		Traits:       json.RawMessage(rec.Traits),
		Distribution: json.RawMessage(rec.Distribution),
		Holdings:     json.RawMessage(rec.Holdings),
	}
	if r.URL.Query().Get("features") == "true" {
		resp.Features = json.RawMessage(rec.Features)
	}
	h.writeJSON(w, resp)
}

// StatsDetail holds round-trip statistics for a given period.
type StatsDetail struct {
	TotalTrips      int     `json:"total_trips"`
	ProfitableTrips int     `json:"profitable_trips"`
	WinRate         float64 `json:"win_rate"`
	TotalProfit     float64 `json:"total_profit"`
}

func (s *StatsDetail) add(trip models.RoundTrip) {
	s.TotalTrips++
	if trip.IsWin() {
		s.ProfitableTrips++
	}
	s.TotalProfit += trip.PnL
}

func (s *StatsDetail) finish() {
	if s.TotalTrips > 0 {
		s.WinRate = float64(s.ProfitableTrips) / float64(s.TotalTrips)
	}
}

// StatisticsResponse is the structure for the statistics endpoint.
type StatisticsResponse struct {
	Since30d StatsDetail `json:"since_30d"`
	AllTime  StatsDetail `json:"all_time"`
}

// StatisticsHandler validates an account's trades, matches them into FIFO
// round trips and summarizes them.
func (h *APIHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	trades, err := h.store.LoadTrades(account)
	if err != nil {
		h.log.Error("Failed to get trades for statistics", zap.String("account", account), zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	since := h.now().AddDate(0, 0, -30)
	var resp StatisticsResponse
	clean, _ := features.Preprocess(trades)
	for _, trip := range positions.Reconstruct(clean).Trips {
		resp.AllTime.add(trip)
		if trip.ExitDate.After(since) {
			resp.Since30d.add(trip)
		}
	}
	resp.AllTime.finish()
	resp.Since30d.finish()

	h.writeJSON(w, resp)
}
