package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"trading-personality/internal/database"
	"trading-personality/internal/models"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Accounts() ([]string, error) {
	args := m.Called()
	accounts, _ := args.Get(0).([]string)
	return accounts, args.Error(1)
}

func (m *mockReader) LoadTrades(account string) ([]models.Trade, error) {
	args := m.Called(account)
	trades, _ := args.Get(0).([]models.Trade)
	return trades, args.Error(1)
}

func (m *mockReader) LatestProfile(account string) (*models.ProfileRecord, error) {
	args := m.Called(account)
	rec, _ := args.Get(0).(*models.ProfileRecord)
	return rec, args.Error(1)
}

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func setupHandler(reader *mockReader) http.Handler {
	h := NewAPIHandler(zap.NewNop(), reader)
	h.now = func() time.Time { return now }
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func trade(side models.Side, qty, price float64, at time.Time) models.Trade {
	return models.Trade{Account: "acct-1", Ticker: "AAPL", Side: side, Quantity: qty, Price: price, Timestamp: at}
}

func TestAccountsHandler(t *testing.T) {
	reader := new(mockReader)
	reader.On("Accounts").Return([]string{"acct-1", "acct-2"}, nil).Once()

	rec := get(t, setupHandler(reader), "/api/accounts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["acct-1","acct-2"]`, rec.Body.String())
	reader.AssertExpectations(t)
}

func TestAccountsHandler_Empty(t *testing.T) {
	reader := new(mockReader)
	reader.On("Accounts").Return(nil, nil)

	rec := get(t, setupHandler(reader), "/api/accounts")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTradesHandler(t *testing.T) {
	reader := new(mockReader)
	reader.On("LoadTrades", "acct-1").Return([]models.Trade{
		trade(models.SideBuy, 10, 100, now.AddDate(0, 0, -10)),
		trade(models.SideSell, 10, 110, now.AddDate(0, 0, -5)),
	}, nil)

	rec := get(t, setupHandler(reader), "/api/accounts/acct-1/trades")
	require.Equal(t, http.StatusOK, rec.Code)

	var trades []models.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trades))
	require.Len(t, trades, 2)
	assert.Equal(t, models.SideSell, trades[0].Side, "most recent first")
}

func TestTradesHandler_Error(t *testing.T) {
	reader := new(mockReader)
	reader.On("LoadTrades", "acct-1").Return(nil, errors.New("db down"))

	rec := get(t, setupHandler(reader), "/api/accounts/acct-1/trades")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProfileHandler(t *testing.T) {
	reader := new(mockReader)
	reader.On("LatestProfile", "acct-1").Return(&models.ProfileRecord{
		RunID:        "run-9",
		Account:      "acct-1",
		Dominant:     "swing",
		Confidence:   0.4,
		Method:       models.MethodHybrid,
		Traits:       datatypes.JSON(`{"patience":45}`),
		Distribution: datatypes.JSON(`{"dominant":"swing"}`),
		Holdings:     datatypes.JSON(`{"risk_score":52}`),
		Features:     datatypes.JSON(`{"timing_peak_hour":10}`),
	}, nil)
	reader.On("LatestProfile", "ghost").Return(nil, fmt.Errorf("profile for ghost: %w", database.ErrNotFound))
	reader.On("LatestProfile", "broken").Return(nil, errors.New("db down"))
	handler := setupHandler(reader)

	t.Run("Found", func(t *testing.T) {
		rec := get(t, handler, "/api/accounts/acct-1/profile")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "run-9", resp.RunID)
		assert.Equal(t, "swing", resp.Dominant)
		assert.JSONEq(t, `{"patience":45}`, string(resp.Traits))
		assert.Empty(t, resp.Features)
	})

	t.Run("WithFeatures", func(t *testing.T) {
		rec := get(t, handler, "/api/accounts/acct-1/profile?features=true")
		var resp ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.JSONEq(t, `{"timing_peak_hour":10}`, string(resp.Features))
	})

	t.Run("NotFound", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, handler, "/api/accounts/ghost/profile").Code)
	})

	t.Run("StoreError", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, get(t, handler, "/api/accounts/broken/profile").Code)
	})
}

func TestStatisticsHandler(t *testing.T) {
	reader := new(mockReader)
	reader.On("LoadTrades", "acct-1").Return([]models.Trade{
		trade(models.SideBuy, 10, 100, now.AddDate(0, -3, 0)),
		trade(models.SideSell, 10, 90, now.AddDate(0, -2, 0)),
		trade(models.SideBuy, 10, 100, now.AddDate(0, 0, -20)),
		trade(models.SideSell, 5, 120, now.AddDate(0, 0, -10)),
		trade(models.SideSell, 5, 130, now.AddDate(0, 0, -5)),
	}, nil)

	rec := get(t, setupHandler(reader), "/api/accounts/acct-1/statistics")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatisticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 3, resp.AllTime.TotalTrips)
	assert.Equal(t, 2, resp.AllTime.ProfitableTrips)
	assert.InDelta(t, 2.0/3, resp.AllTime.WinRate, 1e-9)
	assert.InDelta(t, -100+100+150, resp.AllTime.TotalProfit, 1e-9)

	assert.Equal(t, 2, resp.Since30d.TotalTrips)
	assert.InDelta(t, 1, resp.Since30d.WinRate, 1e-9)
}

func TestStatusHandler(t *testing.T) {
	rec := get(t, setupHandler(new(mockReader)), "/api/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
