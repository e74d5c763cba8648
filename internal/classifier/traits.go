package classifier

import (
	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

// Trait names, each scored 0-100.
const (
	TraitPatience         = "patience"
	TraitActivity         = "activity"
	TraitTrendFollowing   = "trend_following"
	TraitContrarian       = "contrarian"
	TraitConsistency      = "consistency"
	TraitIncomeFocus      = "income_focus"
	TraitEventSensitivity = "event_sensitivity"
	TraitRiskAppetite     = "risk_appetite"
	TraitDiversification  = "diversification"
	TraitDiscipline       = "discipline"
)

// RequiredTraits lists every trait Classify needs.
var RequiredTraits = []string{
	TraitPatience,
	TraitActivity,
	TraitTrendFollowing,
	TraitContrarian,
	TraitConsistency,
	TraitIncomeFocus,
	TraitEventSensitivity,
	TraitRiskAppetite,
	TraitDiversification,
	TraitDiscipline,
}

// neutralTrait is used when no input of a trait is available.
const neutralTrait = 50.0

// component maps one feature onto 0-100: lo scores 0, hi scores 100. Swap lo
// and hi to invert.
type component struct {
	key    string
	lo, hi float64
}

var traitComponents = map[string][]component{
	TraitPatience: {
		{"holding_median_days", 0, 120},
		{"holding_investment_pct", 0, 1},
		{"holding_same_day_pct", 1, 0},
	},
	TraitActivity: {
		{"timing_trading_days_pct", 0, 1},
		{"timing_trades_per_active_day", 1, 5},
		{"timing_avg_gap_days", 30, 1},
	},
	TraitTrendFollowing: {
		{"entry_above_ma50_pct", 0, 1},
		{"entry_chase_pct", 0, 0.5},
		{"social_high_volume_entry_pct", 0, 1},
	},
	TraitContrarian: {
		{"entry_dip_buy_pct", 0, 0.5},
		{"entry_below_ma20_pct", 0, 1},
		{"sizing_after_loss_size_ratio", 0.5, 2},
	},
	TraitConsistency: {
		{"sizing_dca_score", 0, 1},
		{"sizing_trade_value_cv", 2, 0},
		{"timing_gap_cv", 2, 0},
		{"sector_ticker_loyalty", 1, 6},
	},
	TraitIncomeFocus: {
		{"sector_defensive_pct", 0, 0.6},
		{"diversity_etf_core", 0, 1},
		{"holding_investment_pct", 0, 1},
	},
	TraitEventSensitivity: {
		{"sector_recent_ipo_pct", 0, 0.3},
		{"social_meme_trade_pct", 0, 0.5},
		{"social_high_volume_entry_pct", 0, 1},
	},
	TraitRiskAppetite: {
		{"diversity_options_pct", 0, 0.5},
		{"diversity_leveraged_etf_pct", 0, 0.3},
		{"sector_smallcap_pct", 0, 0.5},
		{"sizing_max_position_pct", 0, 1},
	},
	TraitDiversification: {
		{"diversity_unique_tickers", 1, 30},
		{"diversity_top3_share", 1, 0},
		{"sector_sector_count", 1, 8},
	},
	TraitDiscipline: {
		{"holding_disposition_ratio", 3, 0.5},
		{"holding_round_loss_exit_pct", 0, 1},
		{"performance_win_rate", 0.2, 0.8},
	},
}

// DeriveTraits scores the ten traits from a feature vector. Each trait is the
// mean of its available components; a trait with none is neutral.
func DeriveTraits(fv models.FeatureVector) map[string]float64 {
	traits := make(map[string]float64, len(RequiredTraits))
	for _, name := range RequiredTraits {
		var scores []float64
		for _, c := range traitComponents[name] {
			v, ok := fv.Get(c.key)
			if !ok {
				continue
			}
			scores = append(scores, scaleTo100(v, c.lo, c.hi))
		}
		if len(scores) == 0 {
			traits[name] = neutralTrait
			continue
		}
		traits[name] = stats.Clamp(stats.Mean(scores), 0, 100)
	}
	return traits
}

func scaleTo100(v, lo, hi float64) float64 {
	return stats.Clamp(stats.SafeDiv(v-lo, hi-lo, 0)*100, 0, 100)
}
