package features

import (
	"math"

	"trading-personality/internal/stats"
)

var performanceKeys = []string{
	"win_rate", "avg_win_pct", "avg_loss_pct", "profit_factor",
	"total_realized_pnl", "expectancy", "max_drawdown", "largest_win",
	"largest_loss", "pnl_pct_std",
}

// PerformanceModule summarizes realized outcomes of FIFO round trips.
type PerformanceModule struct{}

func (PerformanceModule) Name() string   { return "performance" }
func (PerformanceModule) Prefix() string { return "performance" }
func (PerformanceModule) Keys() []string { return performanceKeys }

func (PerformanceModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(performanceKeys)
	if in.History == nil || len(in.History.Trips) < in.MinSamples {
		return r, nil
	}
	trips := in.History.Trips

	pnls := make([]float64, len(trips))
	pcts := make([]float64, len(trips))
	var winPcts, lossPcts []float64
	var grossWin, grossLoss float64
	var equity, peak, drawdown float64
	for i, t := range trips {
		pnls[i] = t.PnL
		pcts[i] = t.PnLPct
		switch {
		case t.IsWin():
			winPcts = append(winPcts, t.PnLPct)
			grossWin += t.PnL
		case t.IsLoss():
			lossPcts = append(lossPcts, t.PnLPct)
			grossLoss += -t.PnL
		}
		equity += t.PnL
		peak = math.Max(peak, equity)
		drawdown = math.Max(drawdown, peak-equity)
	}

	n := float64(len(trips))
	r.set("win_rate", float64(len(winPcts))/n)
	if len(winPcts) > 0 {
		r.set("avg_win_pct", stats.Mean(winPcts))
	}
	if len(lossPcts) > 0 {
		r.set("avg_loss_pct", stats.Mean(lossPcts))
		r.set("profit_factor", grossWin/grossLoss)
	}
	r.set("total_realized_pnl", stats.Sum(pnls))
	r.set("expectancy", stats.Mean(pnls))
	r.set("max_drawdown", drawdown)
	r.set("largest_win", math.Max(maxFloat(pnls), 0))
	r.set("largest_loss", math.Min(minFloat(pnls), 0))
	r.set("pnl_pct_std", stats.StdDev(pcts))
	return r, nil
}
