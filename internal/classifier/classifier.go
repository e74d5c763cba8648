// Package classifier turns behavioral traits into a probability distribution
// over the eight trading archetypes, blending hand-written heuristics with a
// trained Gaussian mixture.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"trading-personality/internal/logger"
	"trading-personality/internal/metrics"
	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

// ErrMissingTrait is returned when a required trait is absent.
var ErrMissingTrait = errors.New("missing trait")

// Classifier combines the heuristic and probabilistic scorers.
type Classifier struct {
	store   *ModelStore
	prefs   PreferencePolicy
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a classifier. A nil store always falls back to the heuristics;
// a nil policy uses DefaultPreferences.
func New(store *ModelStore, prefs PreferencePolicy, l *zap.Logger, m *metrics.Metrics) *Classifier {
	if prefs == nil {
		prefs = DefaultPreferences()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Classifier{
		store:   store,
		prefs:   prefs,
		logger:  logger.OrNop(l).Named("classifier"),
		metrics: m,
	}
}

// Classify scores traits and returns the archetype distribution.
func (c *Classifier) Classify(traits map[string]float64, fv models.FeatureVector) (models.ArchetypeDistribution, error) {
	for _, name := range RequiredTraits {
		v, ok := traits[name]
		if !ok {
			return models.ArchetypeDistribution{}, fmt.Errorf("%w: %s", ErrMissingTrait, name)
		}
		if !stats.Finite(v) {
			return models.ArchetypeDistribution{}, fmt.Errorf("trait %s is not finite", name)
		}
	}

	scores := HeuristicScores(traits)
	heuristic := normalizeScores(scores)
	dist := models.ArchetypeDistribution{
		HeuristicScores: scores,
		Heuristic:       heuristic,
	}

	probabilistic, err := c.probabilistic(traits, fv)
	if err != nil {
		dist.Probabilities = heuristic
		dist.Method = models.MethodHeuristicFallback
	} else {
		dist.Probabilistic = probabilistic
		dist.Probabilities = c.blend(heuristic, probabilistic)
		dist.Method = models.MethodHybrid
	}
	dist.Dominant = Dominant(dist.Probabilities)
	dist.Confidence = Confidence(dist.Probabilities)

	c.metrics.Classifications.WithLabelValues(dist.Method).Inc()
	c.metrics.Confidence.Observe(dist.Confidence)
	c.logger.Debug("Classified",
		zap.String("dominant", string(dist.Dominant)),
		zap.Float64("confidence", dist.Confidence),
		zap.String("method", dist.Method),
	)
	return dist, nil
}

func (c *Classifier) probabilistic(traits map[string]float64, fv models.FeatureVector) (map[models.Archetype]float64, error) {
	if c.store == nil {
		return nil, errors.New("no model configured")
	}
	model, err := c.store.Get()
	if err != nil {
		return nil, err
	}
	probs, err := model.Predict(traits, fv)
	if err != nil {
		c.logger.Warn("Model prediction failed, using heuristics", zap.Error(err))
		return nil, err
	}
	return probs, nil
}

func (c *Classifier) blend(heuristic, probabilistic map[models.Archetype]float64) map[models.Archetype]float64 {
	picked := make(map[models.Archetype]float64, len(models.Archetypes))
	for _, a := range models.Archetypes {
		if c.prefs.Preferred(a) == MethodHeuristic {
			picked[a] = heuristic[a]
		} else {
			picked[a] = probabilistic[a]
		}
	}
	return normalizeScores(picked)
}

// Dominant returns the most probable archetype; ties go to the earlier one
// in canonical order.
func Dominant(probs map[models.Archetype]float64) models.Archetype {
	best := models.Archetypes[0]
	for _, a := range models.Archetypes[1:] {
		if probs[a] > probs[best] {
			best = a
		}
	}
	return best
}

// Confidence is 1 minus the normalized entropy: 1 for a point mass, 0 for
// the uniform distribution.
func Confidence(probs map[models.Archetype]float64) float64 {
	h := 0.0
	for _, a := range models.Archetypes {
		if p := probs[a]; p > 0 {
			h -= p * math.Log(p)
		}
	}
	return stats.Clamp(1-h/math.Log(float64(len(models.Archetypes))), 0, 1)
}
