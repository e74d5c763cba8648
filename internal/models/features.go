package models

import "sort"

// FeatureVector maps "{prefix}_{name}" keys to values. A nil value marks a
// statistic that could not be computed.
type FeatureVector map[string]*float64

// Float returns a pointer to v, for building vectors.
func Float(v float64) *float64 {
	return &v
}

// Set stores a computed value.
func (fv FeatureVector) Set(key string, v float64) {
	fv[key] = Float(v)
}

// SetNull marks key as not computable.
func (fv FeatureVector) SetNull(key string) {
	fv[key] = nil
}

// Get returns the value of key and whether it is present and computed.
func (fv FeatureVector) Get(key string) (float64, bool) {
	v, ok := fv[key]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// GetOr returns the value of key, or fallback when it is absent or null.
func (fv FeatureVector) GetOr(key string, fallback float64) float64 {
	if v, ok := fv.Get(key); ok {
		return v
	}
	return fallback
}

// Keys returns the keys in sorted order.
func (fv FeatureVector) Keys() []string {
	keys := make([]string, 0, len(fv))
	for k := range fv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Counts returns the number of computed and null entries.
func (fv FeatureVector) Counts() (computed, null int) {
	for _, v := range fv {
		if v == nil {
			null++
		} else {
			computed++
		}
	}
	return computed, null
}

// Floats flattens the vector into plain values, dropping nulls.
func (fv FeatureVector) Floats() map[string]float64 {
	out := make(map[string]float64, len(fv))
	for k, v := range fv {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}
