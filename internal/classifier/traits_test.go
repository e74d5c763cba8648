package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trading-personality/internal/models"
)

func TestDeriveTraits_EmptyVectorIsNeutral(t *testing.T) {
	traits := DeriveTraits(models.FeatureVector{})
	assert.Len(t, traits, len(RequiredTraits))
	for _, name := range RequiredTraits {
		assert.Equal(t, 50.0, traits[name], name)
	}
}

func TestDeriveTraits_NullInputsAreSkipped(t *testing.T) {
	fv := models.FeatureVector{
		"holding_median_days":    models.Float(240),
		"holding_investment_pct": models.Float(1),
		"holding_same_day_pct":   models.Float(0),
	}
	fv.SetNull("timing_trading_days_pct")
	traits := DeriveTraits(fv)

	assert.Equal(t, 100.0, traits[TraitPatience], "values past the range clamp to 100")
	assert.Equal(t, 50.0, traits[TraitActivity])
}

func TestDeriveTraits_InvertedComponents(t *testing.T) {
	fv := models.FeatureVector{
		"diversity_unique_tickers": models.Float(1),
		"diversity_top3_share":     models.Float(1),
		"sector_sector_count":      models.Float(1),
	}
	assert.Equal(t, 0.0, DeriveTraits(fv)[TraitDiversification])

	fv = models.FeatureVector{
		"diversity_unique_tickers": models.Float(30),
		"diversity_top3_share":     models.Float(0.2),
		"sector_sector_count":      models.Float(8),
	}
	assert.InDelta(t, (100+80+100)/3.0, DeriveTraits(fv)[TraitDiversification], 1e-9)
}

func TestDeriveTraits_Range(t *testing.T) {
	fv := models.FeatureVector{}
	for _, comps := range traitComponents {
		for _, c := range comps {
			fv.Set(c.key, 1e6)
		}
	}
	for name, v := range DeriveTraits(fv) {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
}

func TestDeriveTraits_LoyaltyFeedsConsistency(t *testing.T) {
	oneOff := DeriveTraits(models.FeatureVector{"sector_ticker_loyalty": models.Float(1)})
	repeat := DeriveTraits(models.FeatureVector{"sector_ticker_loyalty": models.Float(6)})

	assert.Equal(t, 0.0, oneOff[TraitConsistency])
	assert.Equal(t, 100.0, repeat[TraitConsistency])
}
