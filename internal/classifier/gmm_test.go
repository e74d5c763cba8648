package classifier

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-personality/internal/models"
)

func TestLoadModel(t *testing.T) {
	path := writeModel(t, t.TempDir(), twoComponentModel(TraitActivity))

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, []string{TraitActivity}, m.Features)
	assert.Equal(t, []models.Archetype{models.ArchetypeDayTrader, models.ArchetypePassiveDCA}, m.labels)
}

func TestLoadModel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Model)
		wantErr string
	}{
		{"NoFeatures", func(m *Model) { m.Features = nil }, "no features"},
		{"ScalerLength", func(m *Model) { m.Scaler.Scale = []float64{1, 2} }, "scaler"},
		{"ComponentCount", func(m *Model) { m.ComponentArchetypes = m.ComponentArchetypes[:1] }, "component arrays"},
		{"ZeroWeight", func(m *Model) { m.Weights[1] = 0 }, "weight"},
		{"Dimension", func(m *Model) { m.Means[0] = []float64{1, 2} }, "dimension"},
		{"ZeroVariance", func(m *Model) { m.Variances[1][0] = 0 }, "variance"},
		{"UnknownArchetype", func(m *Model) { m.ComponentArchetypes[0] = "scalper" }, "unknown archetype"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := twoComponentModel(TraitActivity)
			tt.mutate(&m)
			_, err := LoadModel(writeModel(t, t.TempDir(), m))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadModel(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("BadJSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gmm.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
		_, err := LoadModel(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode model")
	})
}

func TestModel_Predict(t *testing.T) {
	m, err := LoadModel(writeModel(t, t.TempDir(), twoComponentModel(TraitActivity)))
	require.NoError(t, err)

	probs, err := m.Predict(withTraits(map[string]float64{TraitActivity: 100}), nil)
	require.NoError(t, err)

	// x = +2: log-likelihoods differ by (4^2)/2 = 8.
	want := 1 / (1 + math.Exp(-8))
	assert.InDelta(t, want, probs[models.ArchetypeDayTrader], 1e-9)
	assert.InDelta(t, 1-want, probs[models.ArchetypePassiveDCA], 1e-9)
	assert.Zero(t, probs[models.ArchetypeMomentum])
	assert.Len(t, probs, len(models.Archetypes))
}

func TestModel_PredictFeatureVector(t *testing.T) {
	m, err := LoadModel(writeModel(t, t.TempDir(), twoComponentModel("timing_trading_days_pct")))
	require.NoError(t, err)

	t.Run("NullImputedAtMean", func(t *testing.T) {
		fv := models.FeatureVector{}
		fv.SetNull("timing_trading_days_pct")
		probs, err := m.Predict(neutralTraits(), fv)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, probs[models.ArchetypeDayTrader], 1e-9)
		assert.InDelta(t, 0.5, probs[models.ArchetypePassiveDCA], 1e-9)
	})

	t.Run("Value", func(t *testing.T) {
		fv := models.FeatureVector{"timing_trading_days_pct": models.Float(0)}
		probs, err := m.Predict(neutralTraits(), fv)
		require.NoError(t, err)
		assert.Greater(t, probs[models.ArchetypePassiveDCA], 0.99)
	})

	t.Run("Mismatch", func(t *testing.T) {
		_, err := m.Predict(neutralTraits(), models.FeatureVector{})
		assert.ErrorIs(t, err, ErrFeatureMismatch)
	})
}

func TestLogSumExp(t *testing.T) {
	assert.InDelta(t, math.Log(4), logSumExp([]float64{0, math.Log(3)}), 1e-12)
	assert.InDelta(t, 1000+math.Log(2), logSumExp([]float64{1000, 1000}), 1e-9)
	assert.True(t, math.IsInf(logSumExp([]float64{math.Inf(-1)}), -1))
}
