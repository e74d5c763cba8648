package features

import (
	"math"

	"trading-personality/internal/stats"
)

var holdingKeys = []string{
	"median_days", "mean_days", "max_days", "same_day_pct", "swing_pct",
	"position_pct", "investment_pct", "disposition_ratio",
	"winner_median_days", "loser_median_days", "round_gain_exit_pct",
	"round_loss_exit_pct", "partial_close_rate", "open_position_count",
}

var (
	roundGainTargets = []float64{0.10, 0.20, 0.25, 0.50, 1.00}
	roundLossTargets = []float64{-0.05, -0.10, -0.20, -0.25, -0.50}
)

const roundExitTolerance = 0.01

// HoldingModule describes how long positions are held and how exits relate
// to outcomes.
type HoldingModule struct{}

func (HoldingModule) Name() string   { return "holding" }
func (HoldingModule) Prefix() string { return "holding" }
func (HoldingModule) Keys() []string { return holdingKeys }

func (HoldingModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(holdingKeys)
	h := in.History
	if h == nil {
		return r, nil
	}

	r.set("open_position_count", float64(len(h.OpenPositions())))
	closing, partial := 0, 0
	for _, e := range h.Enrichments {
		if e.IsClosing {
			closing++
			if e.IsPartialClose() {
				partial++
			}
		}
	}
	if v, ok := share(partial, closing); ok {
		r.set("partial_close_rate", v)
	}

	trips := h.Trips
	if len(trips) < in.MinSamples {
		return r, nil
	}

	days := make([]float64, len(trips))
	var sameDay, swing, position, investment int
	var winners, losers []float64
	var winPcts, lossPcts []float64
	for i, t := range trips {
		days[i] = float64(t.HoldDays)
		switch {
		case t.HoldDays == 0:
			sameDay++
		case t.HoldDays <= 10:
			swing++
		case t.HoldDays <= 60:
			position++
		default:
			investment++
		}
		switch {
		case t.IsWin():
			winners = append(winners, days[i])
			winPcts = append(winPcts, t.PnLPct)
		case t.IsLoss():
			losers = append(losers, days[i])
			lossPcts = append(lossPcts, t.PnLPct)
		}
	}

	n := float64(len(trips))
	r.set("median_days", stats.Median(days))
	r.set("mean_days", stats.Mean(days))
	r.set("max_days", maxFloat(days))
	r.set("same_day_pct", float64(sameDay)/n)
	r.set("swing_pct", float64(swing)/n)
	r.set("position_pct", float64(position)/n)
	r.set("investment_pct", float64(investment)/n)

	if len(winners) >= 2 {
		r.set("winner_median_days", stats.Median(winners))
	}
	if len(losers) >= 2 {
		r.set("loser_median_days", stats.Median(losers))
	}
	if len(winners) >= 2 && len(losers) >= 2 {
		if wm := stats.Median(winners); wm > 0 {
			r.set("disposition_ratio", stats.Median(losers)/wm)
		}
	}

	if len(winPcts) > 0 {
		r.set("round_gain_exit_pct", roundExitShare(winPcts, roundGainTargets))
	}
	if len(lossPcts) > 0 {
		r.set("round_loss_exit_pct", roundExitShare(lossPcts, roundLossTargets))
	}
	return r, nil
}

// roundExitShare is the share of returns within tolerance of a round target.
func roundExitShare(pcts, targets []float64) float64 {
	hits := 0
	for _, p := range pcts {
		for _, target := range targets {
			if math.Abs(p-target) <= roundExitTolerance {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(pcts))
}

