// Package holdings scores the composition and risk of a portfolio from the
// dollar weights of its buys.
package holdings

import (
	"strings"

	"trading-personality/internal/logger"
	"trading-personality/internal/models"
	"trading-personality/internal/stats"

	"go.uber.org/zap"
)

// neutralRisk is reported for an empty portfolio.
const neutralRisk = 50.0

// TickerResolver supplies reference data for tickers. Missing entries are
// treated as unknown.
type TickerResolver interface {
	Resolve(tickers []string) map[string]models.TickerInfo
}

// Market-cap bucket floors.
var capFloors = []struct {
	bucket string
	floor  float64
}{
	{models.CapMega, 200e9},
	{models.CapLarge, 10e9},
	{models.CapMid, 2e9},
	{models.CapSmall, 300e6},
}

var capRisk = map[string]float64{
	models.CapMega:    20,
	models.CapLarge:   35,
	models.CapMid:     55,
	models.CapSmall:   75,
	models.CapMicro:   90,
	models.CapUnknown: 60,
}

var sectorRisk = map[string]float64{
	models.TierLow:    30,
	models.TierMedium: 50,
	models.TierHigh:   80,
}

var etfRisk = map[string]float64{
	models.RiskTierLow:      20,
	models.RiskTierMedium:   45,
	models.RiskTierHigh:     70,
	models.RiskTierVeryHigh: 90,
}

var lowVolSectors = stats.NewSet("utilities", "consumer staples", "real estate")

var highVolSectors = stats.NewSet(
	"technology", "information technology", "energy",
	"biotechnology", "crypto", "communication services",
)

// Scorer computes holdings profiles.
type Scorer struct {
	speculativeFloor float64
	logger           *zap.Logger
}

// NewScorer creates a scorer. Equities below speculativeFloor market cap count
// as speculative.
func NewScorer(speculativeFloor float64, l *zap.Logger) *Scorer {
	return &Scorer{speculativeFloor: speculativeFloor, logger: logger.OrNop(l).Named("holdings")}
}

type holding struct {
	ticker string
	value  float64
	info   models.TickerInfo
}

// Score aggregates BUY trades into a profile. Any other rows are ignored.
func (s *Scorer) Score(trades []models.Trade, resolver TickerResolver) models.HoldingsProfile {
	values := make(map[string]float64)
	for _, t := range trades {
		if !t.IsTrade() || !t.IsBuy() || t.Ticker == "" {
			continue
		}
		if v := t.Value(); v > 0 {
			values[t.Ticker] += v
		}
	}

	tickers := stats.SortedKeys(values)
	total := 0.0
	for _, ticker := range tickers {
		total += values[ticker]
	}
	if len(tickers) == 0 || total <= 0 {
		return neutralProfile()
	}

	var infos map[string]models.TickerInfo
	if resolver != nil {
		infos = resolver.Resolve(tickers)
	}

	holdings := make([]holding, len(tickers))
	for i, ticker := range tickers {
		holdings[i] = holding{ticker: ticker, value: values[ticker], info: infos[ticker]}
	}

	profile := models.HoldingsProfile{
		MarketCapDistribution:    zeroed(models.CapBuckets),
		SectorVolatilityExposure: zeroed(models.VolatilityTiers),
		HoldingCount:             len(holdings),
		TotalValue:               total,
	}

	var risk, speculative, index, etf, leveraged float64
	unknown := 0
	for _, h := range holdings {
		w := h.value / total
		bucket := capBucket(h.info)
		tier := volatilityTier(h.info)
		if bucket == models.CapUnknown && h.info.Sector == "" {
			unknown++
		}

		profile.MarketCapDistribution[bucket] += w
		profile.SectorVolatilityExposure[tier] += w
		risk += w * s.riskOf(h.info, bucket, tier)

		if s.isSpeculative(h.info, bucket) {
			speculative += w
		}
		if h.info.IsETF() {
			etf += w
			if h.info.ETF.Index {
				index += w
			}
			if h.info.ETF.Leveraged || h.info.ETF.Inverse {
				leveraged += w
			}
		}
	}

	profile.RiskScore = stats.Clamp(risk, 0, 100)
	profile.SpeculativeRatio = stats.Clamp(speculative, 0, 1)
	profile.IndexFundRatio = stats.Clamp(index, 0, 1)
	profile.ETFRatio = stats.Clamp(etf, 0, 1)
	profile.LeveragedETFRatio = stats.Clamp(leveraged, 0, 1)

	s.logger.Debug("Scored holdings",
		zap.Int("holdings", len(holdings)),
		zap.Int("unresolved", unknown),
		zap.Float64("risk_score", profile.RiskScore),
	)
	return profile
}

func neutralProfile() models.HoldingsProfile {
	return models.HoldingsProfile{
		MarketCapDistribution:    zeroed(models.CapBuckets),
		SectorVolatilityExposure: zeroed(models.VolatilityTiers),
		RiskScore:                neutralRisk,
	}
}

func zeroed(keys []string) map[string]float64 {
	m := make(map[string]float64, len(keys))
	for _, k := range keys {
		m[k] = 0
	}
	return m
}

func capBucket(info models.TickerInfo) string {
	if info.IsETF() {
		return models.CapETF
	}
	if info.MarketCap > 0 {
		for _, c := range capFloors {
			if info.MarketCap >= c.floor {
				return c.bucket
			}
		}
		return models.CapMicro
	}
	switch cat := strings.ToLower(info.CapCategory); cat {
	case models.CapMega, models.CapLarge, models.CapMid, models.CapSmall, models.CapMicro:
		return cat
	}
	return models.CapUnknown
}

func volatilityTier(info models.TickerInfo) string {
	if info.IsETF() {
		switch etfTier(info.ETF) {
		case models.RiskTierLow:
			return models.TierLow
		case models.RiskTierMedium:
			return models.TierMedium
		default:
			return models.TierHigh
		}
	}
	sector := strings.ToLower(strings.TrimSpace(info.Sector))
	switch {
	case lowVolSectors.Has(sector):
		return models.TierLow
	case highVolSectors.Has(sector):
		return models.TierHigh
	default:
		return models.TierMedium
	}
}

// etfTier returns the fund's risk tier; leveraged and inverse funds are
// always very_high and an unrated fund is medium.
func etfTier(etf *models.ETFInfo) string {
	if etf.Leveraged || etf.Inverse {
		return models.RiskTierVeryHigh
	}
	if _, ok := etfRisk[etf.RiskTier]; ok {
		return etf.RiskTier
	}
	return models.RiskTierMedium
}

func (s *Scorer) riskOf(info models.TickerInfo, bucket, tier string) float64 {
	if info.IsETF() {
		return etfRisk[etfTier(info.ETF)]
	}
	return 0.6*capRisk[bucket] + 0.4*sectorRisk[tier]
}

func (s *Scorer) isSpeculative(info models.TickerInfo, bucket string) bool {
	if info.IsETF() {
		return info.ETF.Leveraged || info.ETF.Inverse
	}
	if info.MarketCap > 0 {
		return info.MarketCap < s.speculativeFloor
	}
	return bucket == models.CapSmall || bucket == models.CapMicro
}
