package features

import (
	"trading-personality/internal/marketdata"
	"trading-personality/internal/models"
	"trading-personality/internal/positions"
	"trading-personality/internal/stats"

	"go.uber.org/zap"
)

// Input is what every module receives. Trades are validated, chronological and
// exclusive to the module; History and Market are shared and must not be
// modified.
type Input struct {
	Trades     []models.Trade
	History    *positions.History
	Market     marketdata.Context
	MinSamples int
	Logger     *zap.Logger
}

// Module computes one namespaced group of statistics.
type Module interface {
	// Name identifies the module in logs and metadata.
	Name() string
	// Prefix namespaces the module's keys as "{prefix}_{name}".
	Prefix() string
	// Keys lists every key the module reports, unprefixed.
	Keys() []string
	// Extract returns a value or nil for each key. Insufficient data yields
	// the full key set of nulls, never an error.
	Extract(in Input) (map[string]*float64, error)
}

// result accumulates module output over a fixed key set.
type result map[string]*float64

func newResult(keys []string) result {
	r := make(result, len(keys))
	for _, k := range keys {
		r[k] = nil
	}
	return r
}

// set stores v, or null when v is not finite.
func (r result) set(key string, v float64) {
	if !stats.Finite(v) {
		r[key] = nil
		return
	}
	r[key] = models.Float(v)
}

func (r result) setBool(key string, b bool) {
	if b {
		r.set(key, 1)
	} else {
		r.set(key, 0)
	}
}

// setIf stores v only when ok.
func (r result) setIf(key string, v float64, ok bool) {
	if ok {
		r.set(key, v)
	}
}

func buysOf(trades []models.Trade) []models.Trade {
	var out []models.Trade
	for _, t := range trades {
		if t.IsBuy() {
			out = append(out, t)
		}
	}
	return out
}

func values(trades []models.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.Value()
	}
	return out
}

// share returns n/total, or false when total is zero.
func share(n, total int) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return float64(n) / float64(total), true
}

// underlying maps an option trade to its underlying ticker.
func underlying(t models.Trade) string {
	return underlyingSymbol(t.Ticker)
}

func underlyingSymbol(symbol string) string {
	if opt, ok := ParseOptionSymbol(symbol); ok {
		return opt.Underlying
	}
	return symbol
}

func maxFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minFloat(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
