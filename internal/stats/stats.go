// Package stats holds the numeric helpers shared by every feature module. All
// edge-case policy (empty input, zero denominators, NaN) lives here so modules
// degrade the same way.
package stats

import (
	"cmp"
	"maps"
	"math"
	"slices"
)

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SafeDiv returns num/den, or fallback when den is zero or the result is not finite.
func SafeDiv(num, den, fallback float64) float64 {
	if den == 0 {
		return fallback
	}
	r := num / den
	if !Finite(r) {
		return fallback
	}
	return r
}

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sum adds xs in order.
func Sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Median returns the median without modifying xs, 0 for an empty slice.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the population standard deviation, 0 for fewer than two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// CoefficientOfVariation returns stddev/|mean|. ok is false for fewer than two
// values or a zero mean.
func CoefficientOfVariation(xs []float64) (cv float64, ok bool) {
	if len(xs) < 2 {
		return 0, false
	}
	m := Mean(xs)
	if m == 0 {
		return 0, false
	}
	return StdDev(xs) / math.Abs(m), true
}

// LinearTrendSlope fits y = a + b*i by least squares over the index i and
// returns b. ok is false for fewer than two points.
func LinearTrendSlope(ys []float64) (slope float64, ok bool) {
	n := float64(len(ys))
	if len(ys) < 2 {
		return 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}

// ShannonEntropy returns the natural-log entropy of weights after normalizing
// them to a distribution. Non-positive weights contribute nothing.
func ShannonEntropy(weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		p := w / total
		h -= p * math.Log(p)
	}
	return h
}

// NormalizedEntropy divides the entropy of weights by ln(len(weights)), giving
// 0 for a point mass and 1 for a uniform spread.
func NormalizedEntropy(weights []float64) float64 {
	if len(weights) < 2 {
		return 0
	}
	return Clamp(ShannonEntropy(weights)/math.Log(float64(len(weights))), 0, 1)
}

// HHI returns the Herfindahl-Hirschman concentration of weights: the sum of
// squared shares. 1 is a single holding.
func HHI(weights []float64) float64 {
	total := Sum(weights)
	if total <= 0 {
		return 0
	}
	h := 0.0
	for _, w := range weights {
		s := w / total
		h += s * s
	}
	return h
}

// Set is a string set.
type Set map[string]struct{}

// NewSet builds a set from items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// JaccardSimilarity returns |a∩b| / |a∪b|; two empty sets are identical.
func JaccardSimilarity(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if b.Has(k) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// JaccardDistance returns 1 - JaccardSimilarity.
func JaccardDistance(a, b Set) float64 {
	return 1 - JaccardSimilarity(a, b)
}

// SortedKeys returns the keys of m in ascending order. Float accumulation over
// maps goes through it so results do not depend on iteration order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// ArgMaxInt returns the key with the largest count, ties going to the smallest key.
func ArgMaxInt[K cmp.Ordered](counts map[K]int) (best K, ok bool) {
	bestN := -1
	for _, k := range SortedKeys(counts) {
		if counts[k] > bestN {
			best, bestN, ok = k, counts[k], true
		}
	}
	return best, ok
}

// ArgMaxFloat returns the key with the largest value, ties going to the smallest key.
func ArgMaxFloat[K cmp.Ordered](values map[K]float64) (best K, ok bool) {
	bestV := math.Inf(-1)
	for _, k := range SortedKeys(values) {
		if values[k] > bestV {
			best, bestV, ok = k, values[k], true
		}
	}
	return best, ok
}

// Normalize scales non-negative weights to sum to 1. It returns false and a
// zero slice when the total is not positive.
func Normalize(weights []float64) ([]float64, bool) {
	out := make([]float64, len(weights))
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return out, false
	}
	for i, w := range weights {
		if w > 0 {
			out[i] = w / total
		}
	}
	return out, true
}
