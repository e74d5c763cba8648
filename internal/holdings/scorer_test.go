package holdings

import (
	"testing"
	"time"

	"trading-personality/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(tickers []string) map[string]models.TickerInfo {
	args := m.Called(tickers)
	return args.Get(0).(map[string]models.TickerInfo)
}

type staticResolver map[string]models.TickerInfo

func (r staticResolver) Resolve(tickers []string) map[string]models.TickerInfo {
	out := make(map[string]models.TickerInfo, len(tickers))
	for _, t := range tickers {
		out[t] = r[t]
	}
	return out
}

func buy(ticker string, qty, price float64) models.Trade {
	return models.Trade{
		Ticker:    ticker,
		Side:      models.SideBuy,
		Quantity:  qty,
		Price:     price,
		Timestamp: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
	}
}

func sumOf(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

var refData = staticResolver{
	"AAPL": {MarketCap: 3e12, Sector: "Technology"},
	"KO":   {MarketCap: 2.7e11, Sector: "Consumer Staples"},
	"MID":  {MarketCap: 5e9, Sector: "Industrials"},
	"TINY": {MarketCap: 1e8, Sector: "Biotechnology"},
	"SMOL": {CapCategory: "small"},
	"SPY":  {ETF: &models.ETFInfo{Index: true, RiskTier: models.RiskTierLow}},
	"TQQQ": {ETF: &models.ETFInfo{Leveraged: true, RiskTier: models.RiskTierHigh}},
}

func TestScore_EmptyPortfolio(t *testing.T) {
	s := NewScorer(2e9, zap.NewNop())

	sell := buy("AAPL", 1, 100)
	sell.Side = models.SideSell
	p := s.Score([]models.Trade{sell}, refData)

	assert.Equal(t, 50.0, p.RiskScore)
	assert.Equal(t, 0, p.HoldingCount)
	assert.Zero(t, sumOf(p.MarketCapDistribution))
	assert.Zero(t, sumOf(p.SectorVolatilityExposure))
	assert.Len(t, p.MarketCapDistribution, len(models.CapBuckets))
}

func TestScore_SingleHoldings(t *testing.T) {
	testCases := []struct {
		name        string
		ticker      string
		bucket      string
		tier        string
		risk        float64
		speculative bool
	}{
		{"MegaCapTech", "AAPL", models.CapMega, models.TierHigh, 0.6*20 + 0.4*80, false},
		{"MegaCapStaples", "KO", models.CapMega, models.TierLow, 0.6*20 + 0.4*30, false},
		{"MidCap", "MID", models.CapMid, models.TierMedium, 0.6*55 + 0.4*50, false},
		{"MicroCapBiotech", "TINY", models.CapMicro, models.TierHigh, 0.6*90 + 0.4*80, true},
		{"CategoryOnly", "SMOL", models.CapSmall, models.TierMedium, 0.6*75 + 0.4*50, true},
		{"Unresolved", "ZZZ", models.CapUnknown, models.TierMedium, 0.6*60 + 0.4*50, false},
		{"IndexETF", "SPY", models.CapETF, models.TierLow, 20, false},
		{"LeveragedETF", "TQQQ", models.CapETF, models.TierHigh, 90, true},
	}

	s := NewScorer(2e9, zap.NewNop())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := s.Score([]models.Trade{buy(tc.ticker, 10, 50)}, refData)
			assert.InDelta(t, 1, p.MarketCapDistribution[tc.bucket], 1e-9)
			assert.InDelta(t, 1, p.SectorVolatilityExposure[tc.tier], 1e-9)
			assert.InDelta(t, tc.risk, p.RiskScore, 1e-9)
			if tc.speculative {
				assert.InDelta(t, 1, p.SpeculativeRatio, 1e-9)
			} else {
				assert.Zero(t, p.SpeculativeRatio)
			}
		})
	}
}

func TestScore_DollarWeighted(t *testing.T) {
	s := NewScorer(2e9, zap.NewNop())
	trades := []models.Trade{
		buy("AAPL", 10, 150), // 1500
		buy("SPY", 5, 500),   // 2500
		buy("TQQQ", 10, 50),  // 500
		buy("TINY", 100, 5),  // 500
	}
	p := s.Score(trades, refData)

	assert.Equal(t, 4, p.HoldingCount)
	assert.InDelta(t, 5000, p.TotalValue, 1e-9)
	assert.InDelta(t, 1, sumOf(p.MarketCapDistribution), 1e-3)
	assert.InDelta(t, 1, sumOf(p.SectorVolatilityExposure), 1e-3)
	assert.InDelta(t, 0.6, p.ETFRatio, 1e-9)
	assert.InDelta(t, 0.5, p.IndexFundRatio, 1e-9)
	assert.InDelta(t, 0.1, p.LeveragedETFRatio, 1e-9)
	assert.InDelta(t, 0.2, p.SpeculativeRatio, 1e-9)

	want := 0.3*44 + 0.5*20 + 0.1*90 + 0.1*86
	assert.InDelta(t, want, p.RiskScore, 1e-9)
	assert.GreaterOrEqual(t, p.RiskScore, 0.0)
	assert.LessOrEqual(t, p.RiskScore, 100.0)
}

func TestScore_ResolvesEachTickerOnce(t *testing.T) {
	r := new(mockResolver)
	r.On("Resolve", []string{"AAPL", "KO"}).Return(map[string]models.TickerInfo{
		"AAPL": refData["AAPL"],
		"KO":   refData["KO"],
	}).Once()

	s := NewScorer(2e9, zap.NewNop())
	p := s.Score([]models.Trade{buy("KO", 1, 60), buy("AAPL", 1, 150), buy("KO", 1, 60)}, r)

	r.AssertExpectations(t)
	assert.Equal(t, 2, p.HoldingCount)
}

func TestScore_NilResolverTreatsAllAsUnknown(t *testing.T) {
	s := NewScorer(2e9, zap.NewNop())
	p := s.Score([]models.Trade{buy("AAPL", 1, 100)}, nil)
	assert.InDelta(t, 1, p.MarketCapDistribution[models.CapUnknown], 1e-9)
	assert.InDelta(t, 56, p.RiskScore, 1e-9)
}

func TestNewScorer_NilLogger(t *testing.T) {
	s := NewScorer(2e9, nil)
	assert.NotPanics(t, func() {
		profile := s.Score([]models.Trade{{Ticker: "KO", Side: models.SideBuy, Quantity: 1, Price: 60, Timestamp: time.Now()}}, nil)
		assert.Equal(t, 1, profile.HoldingCount)
	})
}
