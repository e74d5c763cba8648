package features

import (
	"trading-personality/internal/stats"
)

var entryKeys = []string{
	"above_ma50_pct", "below_ma20_pct", "dip_buy_pct", "avg_distance_ma50", "chase_pct",
}

const (
	dipThreshold   = -0.05 // at least 5% under the 20-day average
	chaseThreshold = 0.10  // at least 10% over the 50-day average
)

// EntryModule describes where buys land relative to recent price trend.
type EntryModule struct{}

func (EntryModule) Name() string   { return "entry" }
func (EntryModule) Prefix() string { return "entry" }
func (EntryModule) Keys() []string { return entryKeys }

func (EntryModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(entryKeys)
	buys := buysOf(in.Trades)
	if len(buys) < in.MinSamples {
		return r, nil
	}

	var dist50, dist20 []float64
	for _, t := range buys {
		u := underlying(t)
		if u != t.Ticker {
			// Option premiums are not comparable to the underlying's average.
			continue
		}
		if ma, ok := in.Market.MovingAverage(u, t.Timestamp, 50); ok && ma > 0 {
			dist50 = append(dist50, t.Price/ma-1)
		}
		if ma, ok := in.Market.MovingAverage(u, t.Timestamp, 20); ok && ma > 0 {
			dist20 = append(dist20, t.Price/ma-1)
		}
	}

	if len(dist50) >= in.MinSamples {
		above, chase := 0, 0
		for _, d := range dist50 {
			if d > 0 {
				above++
			}
			if d >= chaseThreshold {
				chase++
			}
		}
		n := float64(len(dist50))
		r.set("above_ma50_pct", float64(above)/n)
		r.set("chase_pct", float64(chase)/n)
		r.set("avg_distance_ma50", stats.Mean(dist50))
	}
	if len(dist20) >= in.MinSamples {
		below, dips := 0, 0
		for _, d := range dist20 {
			if d < 0 {
				below++
			}
			if d <= dipThreshold {
				dips++
			}
		}
		n := float64(len(dist20))
		r.set("below_ma20_pct", float64(below)/n)
		r.set("dip_buy_pct", float64(dips)/n)
	}
	return r, nil
}
