package features

import (
	"math"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

var sizingKeys = []string{
	"median_trade_value", "min_trade_value", "trade_value_cv",
	"avg_position_pct", "max_position_pct", "round_lot_rate",
	"fractional_share_rate", "size_trend", "after_loss_size_ratio",
	"after_win_size_ratio", "dca_score", "conviction_ratio",
	"redeploy_median_days", "peak_exposure", "peak_open_positions", "fee_drag",
}

// SizingModule describes how much capital a trader commits per trade and how
// sizing reacts to outcomes.
type SizingModule struct{}

func (SizingModule) Name() string   { return "sizing" }
func (SizingModule) Prefix() string { return "sizing" }
func (SizingModule) Keys() []string { return sizingKeys }

func (SizingModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(sizingKeys)
	trades := in.Trades
	if len(trades) < in.MinSamples {
		return r, nil
	}

	vals := values(trades)
	r.set("median_trade_value", stats.Median(vals))
	r.set("min_trade_value", minFloat(vals))
	cv, ok := stats.CoefficientOfVariation(vals)
	r.setIf("trade_value_cv", cv, ok)

	mean := stats.Mean(vals)
	if slope, ok := stats.LinearTrendSlope(vals); ok {
		r.set("size_trend", stats.SafeDiv(slope, mean, 0))
	}

	roundLots, fractional, equityTrades := 0, 0, 0
	var fees float64
	for _, t := range trades {
		fees += t.Fees
		if t.InstrumentType == models.InstrumentOption || t.InstrumentType == models.InstrumentCrypto {
			continue
		}
		equityTrades++
		if t.Quantity != math.Trunc(t.Quantity) {
			fractional++
		} else if math.Mod(t.Quantity, 100) == 0 {
			roundLots++
		}
	}
	if v, ok := share(roundLots, equityTrades); ok {
		r.set("round_lot_rate", v)
	}
	if v, ok := share(fractional, equityTrades); ok {
		r.set("fractional_share_rate", v)
	}
	r.set("fee_drag", stats.SafeDiv(fees, stats.Sum(vals), 0))

	sizingPortfolio(r, trades)
	sizingPerTicker(r, trades)
	sizingRedeploy(r, trades)
	return r, nil
}

type costLot struct {
	qty  float64
	cost float64 // total cost basis of qty
}

// sizingPortfolio walks the stream keeping a long-only cost-basis book, which
// gives position size relative to the book and sizing after wins and losses.
func sizingPortfolio(r result, trades []models.Trade) {
	book := map[string]*costLot{}
	var exposure, peakExposure float64
	open, peakOpen := 0, 0

	var positionPcts, buyVals, afterLoss, afterWin []float64
	pending := 0 // -1 after a losing close, +1 after a winning close

	for _, t := range trades {
		lot := book[t.Ticker]
		if lot == nil {
			lot = &costLot{}
			book[t.Ticker] = lot
		}
		v := t.Value()

		if t.IsBuy() {
			if lot.qty == 0 {
				open++
			}
			lot.qty += t.Quantity
			lot.cost += v
			exposure += v
			positionPcts = append(positionPcts, stats.SafeDiv(v, exposure, 0))
			buyVals = append(buyVals, v)

			switch pending {
			case -1:
				afterLoss = append(afterLoss, v)
			case 1:
				afterWin = append(afterWin, v)
			}
			pending = 0
		} else if lot.qty > 0 {
			closed := math.Min(t.Quantity, lot.qty)
			avg := lot.cost / lot.qty
			released := avg * closed
			pnl := (t.Price - avg) * closed

			lot.qty -= closed
			lot.cost -= released
			exposure -= released
			if lot.qty <= 1e-9 {
				exposure -= lot.cost
				lot.qty, lot.cost = 0, 0
				open--
			}
			switch {
			case pnl < 0:
				pending = -1
			case pnl > 0:
				pending = 1
			}
		}

		peakExposure = math.Max(peakExposure, exposure)
		if open > peakOpen {
			peakOpen = open
		}
	}

	if len(positionPcts) > 0 {
		r.set("avg_position_pct", stats.Mean(positionPcts))
		r.set("max_position_pct", maxFloat(positionPcts))
	}
	r.set("peak_exposure", peakExposure)
	r.set("peak_open_positions", float64(peakOpen))

	meanBuy := stats.Mean(buyVals)
	if len(afterLoss) >= 2 {
		r.set("after_loss_size_ratio", stats.SafeDiv(stats.Mean(afterLoss), meanBuy, 1))
	}
	if len(afterWin) >= 2 {
		r.set("after_win_size_ratio", stats.SafeDiv(stats.Mean(afterWin), meanBuy, 1))
	}
}

func sizingPerTicker(r result, trades []models.Trade) {
	perTicker := map[string][]float64{}
	for _, t := range buysOf(trades) {
		perTicker[t.Ticker] = append(perTicker[t.Ticker], t.Value())
	}

	var dca, conviction []float64
	for _, ticker := range stats.SortedKeys(perTicker) {
		buys := perTicker[ticker]
		if len(buys) >= 3 {
			if cv, ok := stats.CoefficientOfVariation(buys); ok {
				dca = append(dca, stats.Clamp(1-cv, 0, 1))
			}
		}
		if len(buys) >= 2 {
			if lo := minFloat(buys); lo > 0 {
				conviction = append(conviction, maxFloat(buys)/lo)
			}
		}
	}
	if len(dca) > 0 {
		r.set("dca_score", stats.Mean(dca))
	}
	if len(conviction) > 0 {
		r.set("conviction_ratio", stats.Median(conviction))
	}
}

// sizingRedeploy measures how fast sale proceeds go back to work.
func sizingRedeploy(r result, trades []models.Trade) {
	var waits []float64
	for i, t := range trades {
		if !t.IsSell() {
			continue
		}
		for _, next := range trades[i+1:] {
			if next.IsBuy() {
				waits = append(waits, math.Max(stats.DaysBetween(t.Timestamp, next.Timestamp), 0))
				break
			}
		}
	}
	if len(waits) > 0 {
		r.set("redeploy_median_days", stats.Median(waits))
	}
}
