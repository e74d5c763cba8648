package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-personality/internal/classifier"
	"trading-personality/internal/config"
	"trading-personality/internal/database"
	"trading-personality/internal/features"
	"trading-personality/internal/holdings"
	"trading-personality/internal/marketdata"
	"trading-personality/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveProfile(rec *models.ProfileRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

var base = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

func tr(account, ticker string, side models.Side, qty, price float64, days int) models.Trade {
	return models.Trade{
		Account:   account,
		Ticker:    ticker,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Timestamp: base.AddDate(0, 0, days),
	}
}

func history(account string) []models.Trade {
	return []models.Trade{
		tr(account, "SPY", models.SideBuy, 10, 470, 0),
		tr(account, "AAPL", models.SideBuy, 20, 185, 1),
		tr(account, "AAPL", models.SideSell, 20, 195, 15),
		tr(account, "KO", models.SideBuy, 50, 60, 20),
		tr(account, "SPY", models.SideBuy, 10, 480, 30),
		tr(account, "GME", models.SideBuy, 100, 15, 35),
		tr(account, "GME", models.SideSell, 100, 12, 36),
		tr(account, "SPY", models.SideBuy, 10, 490, 60),
	}
}

func newTestService(store ProfileStore) *Service {
	nop := zap.NewNop()
	svc := NewService(
		features.NewExtractor(config.Extraction{MinTrades: 5, MinSamples: 2}, nop, nil),
		classifier.New(nil, nil, nop, nil),
		holdings.NewScorer(2e9, nop),
		store,
		nop,
	)
	svc.now = func() time.Time { return base.AddDate(0, 3, 0) }
	return svc
}

func TestService_Profile(t *testing.T) {
	store := new(mockStore)
	store.On("SaveProfile", mock.MatchedBy(func(rec *models.ProfileRecord) bool {
		return rec.Account == "acct-1" && rec.Method == models.MethodHeuristicFallback
	})).Return(nil).Once()

	trades := append(history("acct-1"), tr("acct-2", "TSLA", models.SideBuy, 1, 250, 3))
	universe := marketdata.DefaultUniverse()

	p, err := newTestService(store).Profile(context.Background(), "acct-1", trades, universe, universe)
	require.NoError(t, err)

	_, err = uuid.Parse(p.RunID)
	assert.NoError(t, err)
	assert.False(t, p.Insufficient)
	assert.Equal(t, 8, p.Metadata.RowsUsed, "other accounts are filtered out")
	assert.Len(t, p.Traits, len(classifier.RequiredTraits))
	assert.Equal(t, models.MethodHeuristicFallback, p.Distribution.Method)
	assert.Equal(t, 4, p.Holdings.HoldingCount)
	assert.Equal(t, base.AddDate(0, 3, 0), p.GeneratedAt)

	v, ok := p.Features.Get("performance_win_rate")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)

	store.AssertExpectations(t)
}

func TestService_ProfileHoldingsUseCleanTrades(t *testing.T) {
	trades := history("acct-1")
	trades[1].Ticker = " aapl"
	trades = append(trades,
		tr("acct-1", "MSFT", models.SideBuy, 10, 400, 5),
		models.Trade{Account: "acct-1", Ticker: "NVDA", Side: models.SideBuy, Quantity: 5, Price: 900},
	)
	trades[len(trades)-2].Fees = -1

	p, err := newTestService(nil).Profile(context.Background(), "acct-1", trades, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, p.Holdings.HoldingCount, "case-folded AAPL, dropped MSFT and NVDA")
	assert.InDelta(t, 10*470+20*185+50*60+10*480+100*15+10*490, p.Holdings.TotalValue, 1e-6)
}

func TestService_ProfileInsufficient(t *testing.T) {
	store := new(mockStore)
	store.On("SaveProfile", mock.Anything).Return(nil).Once()

	trades := history("acct-1")[:3]
	p, err := newTestService(store).Profile(context.Background(), "acct-1", trades, nil, nil)
	require.NoError(t, err)

	assert.True(t, p.Insufficient)
	assert.Empty(t, p.Features)
	for _, name := range classifier.RequiredTraits {
		assert.Equal(t, 50.0, p.Traits[name], name)
	}
	store.AssertExpectations(t)
}

func TestService_ProfileStoreError(t *testing.T) {
	store := new(mockStore)
	store.On("SaveProfile", mock.Anything).Return(errors.New("disk full"))

	_, err := newTestService(store).Profile(context.Background(), "acct-1", history("acct-1"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestService_ProfileCanceled(t *testing.T) {
	store := new(mockStore)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(store).Profile(ctx, "acct-1", history("acct-1"), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	store.AssertNotCalled(t, "SaveProfile", mock.Anything)
}

func TestService_PersistsToDatabase(t *testing.T) {
	db, err := database.NewStore(filepath.Join(t.TempDir(), "profiles.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveTrades(history("acct-1")))
	trades, err := db.LoadTrades("acct-1")
	require.NoError(t, err)

	p, err := newTestService(db).Profile(context.Background(), "acct-1", trades, nil, nil)
	require.NoError(t, err)

	rec, err := db.LatestProfile("acct-1")
	require.NoError(t, err)
	assert.Equal(t, p.RunID, rec.RunID)
	assert.Equal(t, string(p.Distribution.Dominant), rec.Dominant)
	assert.Equal(t, p.Metadata.TotalFeatures, rec.TotalFeatures)

	var traits map[string]float64
	require.NoError(t, json.Unmarshal(rec.Traits, &traits))
	assert.Equal(t, p.Traits, traits)
}
