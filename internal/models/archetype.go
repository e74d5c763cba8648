package models

// Archetype is one of the eight canonical trading styles.
type Archetype string

const (
	ArchetypeMomentum      Archetype = "momentum"
	ArchetypeValue         Archetype = "value"
	ArchetypeIncome        Archetype = "income"
	ArchetypeSwing         Archetype = "swing"
	ArchetypeDayTrader     Archetype = "day_trader"
	ArchetypeEventDriven   Archetype = "event_driven"
	ArchetypeMeanReversion Archetype = "mean_reversion"
	ArchetypePassiveDCA    Archetype = "passive_dca"
)

// Archetypes lists every archetype in canonical order. Ties are broken by
// position in this slice.
var Archetypes = []Archetype{
	ArchetypeMomentum,
	ArchetypeValue,
	ArchetypeIncome,
	ArchetypeSwing,
	ArchetypeDayTrader,
	ArchetypeEventDriven,
	ArchetypeMeanReversion,
	ArchetypePassiveDCA,
}

// ParseArchetype validates a label.
func ParseArchetype(s string) (Archetype, bool) {
	for _, a := range Archetypes {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Classification methods reported on a distribution.
const (
	MethodHybrid            = "hybrid"
	MethodHeuristicFallback = "heuristic_fallback"
)

// ArchetypeDistribution is the classifier output.
type ArchetypeDistribution struct {
	Probabilities map[Archetype]float64 `json:"probabilities"`
	Dominant      Archetype             `json:"dominant"`
	Confidence    float64               `json:"confidence"`
	Method        string                `json:"method"`

	// Component outputs kept for audit and retraining.
	HeuristicScores map[Archetype]float64 `json:"heuristic_scores,omitempty"`
	Heuristic       map[Archetype]float64 `json:"heuristic,omitempty"`
	Probabilistic   map[Archetype]float64 `json:"probabilistic,omitempty"`
}
