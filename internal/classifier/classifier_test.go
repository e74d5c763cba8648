package classifier

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-personality/internal/metrics"
	"trading-personality/internal/models"
)

func assertValidDistribution(t *testing.T, dist models.ArchetypeDistribution) {
	t.Helper()
	total := 0.0
	for _, a := range models.Archetypes {
		p := dist.Probabilities[a]
		assert.GreaterOrEqual(t, p, 0.0, a)
		total += p
		assert.LessOrEqual(t, p, dist.Probabilities[dist.Dominant], "dominant must be the arg-max")
	}
	assert.InDelta(t, 1, total, 1e-3)
	assert.GreaterOrEqual(t, dist.Confidence, 0.0)
	assert.LessOrEqual(t, dist.Confidence, 1.0)
}

func TestClassify_MissingTrait(t *testing.T) {
	c := New(nil, nil, zap.NewNop(), nil)
	traits := neutralTraits()
	delete(traits, TraitDiscipline)

	_, err := c.Classify(traits, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTrait)
	assert.Contains(t, err.Error(), TraitDiscipline)
}

func TestClassify_NonFiniteTrait(t *testing.T) {
	c := New(nil, nil, zap.NewNop(), nil)
	_, err := c.Classify(withTraits(map[string]float64{TraitActivity: math.NaN()}), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingTrait)
}

func TestClassify_HeuristicFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	store := NewModelStore(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop(), m)
	c := New(store, DefaultPreferences(), zap.NewNop(), m)

	traits := withTraits(map[string]float64{TraitActivity: 100, TraitPatience: 0, TraitRiskAppetite: 100})
	dist, err := c.Classify(traits, models.FeatureVector{})
	require.NoError(t, err)

	assert.Equal(t, models.MethodHeuristicFallback, dist.Method)
	assert.Equal(t, models.ArchetypeDayTrader, dist.Dominant)
	assert.Equal(t, dist.Heuristic, dist.Probabilities)
	assert.Nil(t, dist.Probabilistic)
	assertValidDistribution(t, dist)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Classifications.WithLabelValues(models.MethodHeuristicFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelLoadErrors))
}

func TestClassify_NoStore(t *testing.T) {
	dist, err := New(nil, nil, nil, nil).Classify(neutralTraits(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.MethodHeuristicFallback, dist.Method)
	assertValidDistribution(t, dist)
}

func TestClassify_Hybrid(t *testing.T) {
	path := writeModel(t, t.TempDir(), twoComponentModel(TraitActivity))
	traits := withTraits(map[string]float64{TraitActivity: 100})

	t.Run("AllProbabilistic", func(t *testing.T) {
		c := New(NewModelStore(path, nil, nil), StaticPreferences{}, zap.NewNop(), nil)
		dist, err := c.Classify(traits, nil)
		require.NoError(t, err)

		assert.Equal(t, models.MethodHybrid, dist.Method)
		assert.Equal(t, models.ArchetypeDayTrader, dist.Dominant)
		assert.InDelta(t, 1/(1+math.Exp(-8)), dist.Probabilities[models.ArchetypeDayTrader], 1e-9)
		for _, a := range models.Archetypes {
			assert.InDelta(t, dist.Probabilistic[a], dist.Probabilities[a], 1e-12, a)
		}
		assertValidDistribution(t, dist)
	})

	t.Run("AllHeuristic", func(t *testing.T) {
		prefs := StaticPreferences{}
		for _, a := range models.Archetypes {
			prefs[a] = MethodHeuristic
		}
		c := New(NewModelStore(path, nil, nil), prefs, zap.NewNop(), nil)
		dist, err := c.Classify(traits, nil)
		require.NoError(t, err)

		assert.Equal(t, models.MethodHybrid, dist.Method)
		for _, a := range models.Archetypes {
			assert.InDelta(t, dist.Heuristic[a], dist.Probabilities[a], 1e-12, a)
		}
	})

	t.Run("Mixed", func(t *testing.T) {
		// Day trader and passive DCA come from the heuristics; every other
		// archetype comes from a model that gives them zero mass.
		c := New(NewModelStore(path, nil, nil), DefaultPreferences(), zap.NewNop(), nil)
		dist, err := c.Classify(traits, nil)
		require.NoError(t, err)

		h := dist.Heuristic
		pair := h[models.ArchetypeDayTrader] + h[models.ArchetypePassiveDCA]
		assert.InDelta(t, h[models.ArchetypeDayTrader]/pair, dist.Probabilities[models.ArchetypeDayTrader], 1e-9)
		assert.Zero(t, dist.Probabilities[models.ArchetypeMomentum])
		assertValidDistribution(t, dist)
	})
}

func TestClassify_FeatureMismatchFallsBack(t *testing.T) {
	path := writeModel(t, t.TempDir(), twoComponentModel("timing_gap_cv"))
	c := New(NewModelStore(path, nil, nil), nil, zap.NewNop(), nil)

	dist, err := c.Classify(neutralTraits(), models.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, models.MethodHeuristicFallback, dist.Method)
	assertValidDistribution(t, dist)
}

func TestConfidence(t *testing.T) {
	point := map[models.Archetype]float64{models.ArchetypeValue: 1}
	assert.InDelta(t, 1, Confidence(point), 1e-12)

	uniform := normalizeScores(nil)
	assert.InDelta(t, 0, Confidence(uniform), 1e-12)

	split := map[models.Archetype]float64{models.ArchetypeValue: 0.5, models.ArchetypeSwing: 0.5}
	assert.InDelta(t, 1-math.Log(2)/math.Log(8), Confidence(split), 1e-12)
}

func TestDominant_TiesUseCanonicalOrder(t *testing.T) {
	assert.Equal(t, models.ArchetypeMomentum, Dominant(normalizeScores(nil)))

	tied := map[models.Archetype]float64{models.ArchetypeSwing: 0.5, models.ArchetypeValue: 0.5}
	assert.Equal(t, models.ArchetypeValue, Dominant(tied))
}
