package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

// ErrFeatureMismatch is returned when the input lacks a feature the model was
// trained on.
var ErrFeatureMismatch = errors.New("feature vector does not match model")

// Scaler standardizes raw feature values: (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Model is a Gaussian mixture with diagonal covariance whose components are
// labelled with archetypes. It is immutable once loaded.
type Model struct {
	Features            []string    `json:"features"`
	Scaler              Scaler      `json:"scaler"`
	Weights             []float64   `json:"weights"`
	Means               [][]float64 `json:"means"`
	Variances           [][]float64 `json:"variances"`
	ComponentArchetypes []string    `json:"component_archetypes"`

	labels []models.Archetype
}

// LoadModel reads and validates a model artifact.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &m, nil
}

func (m *Model) validate() error {
	d := len(m.Features)
	k := len(m.Weights)
	if d == 0 || k == 0 {
		return errors.New("model has no features or components")
	}
	if len(m.Scaler.Mean) != d || len(m.Scaler.Scale) != d {
		return fmt.Errorf("scaler has %d/%d entries, want %d", len(m.Scaler.Mean), len(m.Scaler.Scale), d)
	}
	if len(m.Means) != k || len(m.Variances) != k || len(m.ComponentArchetypes) != k {
		return fmt.Errorf("component arrays must all have %d entries", k)
	}
	m.labels = make([]models.Archetype, k)
	for c := 0; c < k; c++ {
		if m.Weights[c] <= 0 || !stats.Finite(m.Weights[c]) {
			return fmt.Errorf("component %d has weight %v", c, m.Weights[c])
		}
		if len(m.Means[c]) != d || len(m.Variances[c]) != d {
			return fmt.Errorf("component %d has wrong dimension", c)
		}
		for j := 0; j < d; j++ {
			if m.Variances[c][j] <= 0 || !stats.Finite(m.Variances[c][j]) {
				return fmt.Errorf("component %d has variance %v", c, m.Variances[c][j])
			}
		}
		a, ok := models.ParseArchetype(m.ComponentArchetypes[c])
		if !ok {
			return fmt.Errorf("component %d has unknown archetype %q", c, m.ComponentArchetypes[c])
		}
		m.labels[c] = a
	}
	return nil
}

// vectorize builds the standardized input in model feature order. Model
// features are looked up in the feature vector first, then in the traits. A
// null feature is imputed at the mean, which standardizes to 0.
func (m *Model) vectorize(traits map[string]float64, fv models.FeatureVector) ([]float64, error) {
	x := make([]float64, len(m.Features))
	for j, name := range m.Features {
		var raw float64
		if v, present := fv[name]; present {
			if v == nil {
				continue
			}
			raw = *v
		} else if t, ok := traits[name]; ok {
			raw = t
		} else {
			return nil, fmt.Errorf("%w: missing %q", ErrFeatureMismatch, name)
		}
		scale := m.Scaler.Scale[j]
		if scale == 0 {
			scale = 1
		}
		x[j] = (raw - m.Scaler.Mean[j]) / scale
	}
	return x, nil
}

// Predict returns the posterior probability of every archetype. Components
// sharing an archetype are summed; archetypes with no component get 0.
func (m *Model) Predict(traits map[string]float64, fv models.FeatureVector) (map[models.Archetype]float64, error) {
	x, err := m.vectorize(traits, fv)
	if err != nil {
		return nil, err
	}

	logp := make([]float64, len(m.Weights))
	for c := range m.Weights {
		lp := math.Log(m.Weights[c])
		for j, xj := range x {
			v := m.Variances[c][j]
			diff := xj - m.Means[c][j]
			lp += -0.5*math.Log(2*math.Pi*v) - diff*diff/(2*v)
		}
		logp[c] = lp
	}
	norm := logSumExp(logp)

	out := make(map[models.Archetype]float64, len(models.Archetypes))
	for _, a := range models.Archetypes {
		out[a] = 0
	}
	for c, lp := range logp {
		out[m.labels[c]] += math.Exp(lp - norm)
	}
	return normalizeScores(out), nil
}

func logSumExp(xs []float64) float64 {
	best := math.Inf(-1)
	for _, x := range xs {
		if x > best {
			best = x
		}
	}
	if math.IsInf(best, -1) {
		return best
	}
	sum := 0.0
	for _, x := range xs {
		sum += math.Exp(x - best)
	}
	return best + math.Log(sum)
}
