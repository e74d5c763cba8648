package classifier

import (
	"math"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

// HeuristicScores applies the hand formulas to traits. Scores are clamped to
// 0-100. Missing traits count as zero; Classify rejects them before this runs.
func HeuristicScores(traits map[string]float64) map[models.Archetype]float64 {
	t := func(name string) float64 { return traits[name] }
	inv := func(name string) float64 { return 100 - traits[name] }

	// Swing traders hold for days to weeks: patience peaks in the middle.
	midPatience := 100 - 2*math.Abs(t(TraitPatience)-45)

	raw := map[models.Archetype]float64{
		models.ArchetypeMomentum:      0.45*t(TraitTrendFollowing) + 0.25*t(TraitActivity) + 0.3*inv(TraitContrarian),
		models.ArchetypeValue:         0.4*t(TraitContrarian) + 0.35*t(TraitPatience) + 0.25*t(TraitDiscipline),
		models.ArchetypeIncome:        0.5*t(TraitIncomeFocus) + 0.3*t(TraitPatience) + 0.2*inv(TraitRiskAppetite),
		models.ArchetypeSwing:         0.4*midPatience + 0.3*t(TraitActivity) + 0.3*t(TraitTrendFollowing),
		models.ArchetypeDayTrader:     0.5*t(TraitActivity) + 0.35*inv(TraitPatience) + 0.15*t(TraitRiskAppetite),
		models.ArchetypeEventDriven:   0.6*t(TraitEventSensitivity) + 0.2*t(TraitRiskAppetite) + 0.2*t(TraitActivity),
		models.ArchetypeMeanReversion: 0.5*t(TraitContrarian) + 0.3*t(TraitActivity) + 0.2*t(TraitDiscipline),
		models.ArchetypePassiveDCA:    0.4*t(TraitConsistency) + 0.25*t(TraitPatience) + 0.2*t(TraitDiversification) + 0.15*inv(TraitActivity),
	}
	for a, v := range raw {
		raw[a] = stats.Clamp(v, 0, 100)
	}
	return raw
}

// normalizeScores turns non-negative scores into a distribution over every
// archetype. All-zero scores give the uniform distribution.
func normalizeScores(scores map[models.Archetype]float64) map[models.Archetype]float64 {
	weights := make([]float64, len(models.Archetypes))
	for i, a := range models.Archetypes {
		weights[i] = scores[a]
	}
	normalized, ok := stats.Normalize(weights)
	out := make(map[models.Archetype]float64, len(models.Archetypes))
	for i, a := range models.Archetypes {
		if ok {
			out[a] = normalized[i]
		} else {
			out[a] = 1 / float64(len(models.Archetypes))
		}
	}
	return out
}
