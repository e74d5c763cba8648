package models

// Market-cap buckets used by the holdings profile.
const (
	CapMega    = "mega"
	CapLarge   = "large"
	CapMid     = "mid"
	CapSmall   = "small"
	CapMicro   = "micro"
	CapETF     = "etf"
	CapUnknown = "unknown"
)

// Sector volatility tiers.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// CapBuckets lists the market-cap buckets in reporting order.
var CapBuckets = []string{CapMega, CapLarge, CapMid, CapSmall, CapMicro, CapETF, CapUnknown}

// VolatilityTiers lists the sector volatility tiers in reporting order.
var VolatilityTiers = []string{TierLow, TierMedium, TierHigh}

// HoldingsProfile describes portfolio composition from buy-side dollar weights.
type HoldingsProfile struct {
	MarketCapDistribution    map[string]float64 `json:"market_cap_distribution"`
	SectorVolatilityExposure map[string]float64 `json:"sector_volatility_exposure"`
	RiskScore                float64            `json:"risk_score"`        // 0-100
	SpeculativeRatio         float64            `json:"speculative_ratio"` // 0-1
	IndexFundRatio           float64            `json:"index_fund_ratio"`  // 0-1
	ETFRatio                 float64            `json:"etf_ratio"`
	LeveragedETFRatio        float64            `json:"leveraged_etf_ratio"`
	HoldingCount             int                `json:"holding_count"`
	TotalValue               float64            `json:"total_value"`
}

// ETF risk tiers. VeryHigh is reserved for leveraged and inverse products.
const (
	RiskTierLow      = "low"
	RiskTierMedium   = "medium"
	RiskTierHigh     = "high"
	RiskTierVeryHigh = "very_high"
)

// ETFInfo classifies an exchange-traded fund.
type ETFInfo struct {
	Index     bool   `json:"index" yaml:"index"`
	Leveraged bool   `json:"leveraged" yaml:"leveraged"`
	Inverse   bool   `json:"inverse" yaml:"inverse"`
	Sector    bool   `json:"sector" yaml:"sector"`
	RiskTier  string `json:"risk_tier" yaml:"risk_tier"`
}

// TickerInfo is the reference data the holdings scorer needs for one ticker.
// Zero values mean unknown.
type TickerInfo struct {
	MarketCap   float64  `json:"market_cap,omitempty"`
	CapCategory string   `json:"cap_category,omitempty"` // used when MarketCap is unknown
	Sector      string   `json:"sector,omitempty"`
	ETF         *ETFInfo `json:"etf,omitempty"`
}

// IsETF reports whether the ticker is a fund.
func (i TickerInfo) IsETF() bool { return i.ETF != nil }
