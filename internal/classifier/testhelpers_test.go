package classifier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func neutralTraits() map[string]float64 {
	traits := make(map[string]float64, len(RequiredTraits))
	for _, name := range RequiredTraits {
		traits[name] = 50
	}
	return traits
}

func withTraits(overrides map[string]float64) map[string]float64 {
	traits := neutralTraits()
	for k, v := range overrides {
		traits[k] = v
	}
	return traits
}

// twoComponentModel separates day traders from passive investors along one
// feature, scaled so that 100 standardizes to +2 and 0 to -2.
func twoComponentModel(feature string) Model {
	return Model{
		Features:            []string{feature},
		Scaler:              Scaler{Mean: []float64{50}, Scale: []float64{25}},
		Weights:             []float64{0.5, 0.5},
		Means:               [][]float64{{2}, {-2}},
		Variances:           [][]float64{{1}, {1}},
		ComponentArchetypes: []string{"day_trader", "passive_dca"},
	}
}

func writeModel(t *testing.T, dir string, m Model) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(dir, "gmm.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
