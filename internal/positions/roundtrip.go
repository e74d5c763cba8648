package positions

import (
	"time"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"

	"github.com/shopspring/decimal"
)

// Lot is an unmatched remainder of a buy.
type Lot struct {
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	Remaining float64   `json:"remaining"`
}

// Reconstruction is the long-only realized view of a trade stream.
type Reconstruction struct {
	Trips []models.RoundTrip
	// OpenLots holds, per ticker, the buys not yet consumed, oldest first.
	OpenLots map[string][]Lot
	// Unmatched holds, per ticker, sell quantity that found no lot to match.
	Unmatched map[string]float64
}

type lot struct {
	date      time.Time
	price     decimal.Decimal
	remaining decimal.Decimal
}

// Reconstruct matches sells against earlier buys of the same ticker in FIFO
// order. Trades must already be in chronological order; cash events are skipped.
func Reconstruct(trades []models.Trade) Reconstruction {
	queues := make(map[string][]*lot)
	unmatched := make(map[string]decimal.Decimal)
	var trips []models.RoundTrip

	for _, t := range trades {
		if !t.IsTrade() || t.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromFloat(t.Quantity)
		price := decimal.NewFromFloat(t.Price)

		switch t.Side {
		case models.SideBuy:
			queues[t.Ticker] = append(queues[t.Ticker], &lot{date: t.Timestamp, price: price, remaining: qty})
		case models.SideSell:
			queue := queues[t.Ticker]
			remaining := qty
			for remaining.IsPositive() && len(queue) > 0 {
				head := queue[0]
				matched := decimal.Min(remaining, head.remaining)
				trips = append(trips, newRoundTrip(t.Ticker, head, t.Timestamp, price, matched))

				head.remaining = head.remaining.Sub(matched)
				remaining = remaining.Sub(matched)
				if !head.remaining.IsPositive() {
					queue = queue[1:]
				}
			}
			queues[t.Ticker] = queue
			if remaining.IsPositive() {
				unmatched[t.Ticker] = unmatched[t.Ticker].Add(remaining)
			}
		}
	}

	rec := Reconstruction{
		Trips:     trips,
		OpenLots:  make(map[string][]Lot),
		Unmatched: make(map[string]float64, len(unmatched)),
	}
	for ticker, queue := range queues {
		if len(queue) == 0 {
			continue
		}
		lots := make([]Lot, len(queue))
		for i, l := range queue {
			lots[i] = Lot{Date: l.date, Price: l.price.InexactFloat64(), Remaining: l.remaining.InexactFloat64()}
		}
		rec.OpenLots[ticker] = lots
	}
	for ticker, q := range unmatched {
		rec.Unmatched[ticker] = q.InexactFloat64()
	}
	return rec
}

func newRoundTrip(ticker string, entry *lot, exitDate time.Time, exitPrice, matched decimal.Decimal) models.RoundTrip {
	pnl := exitPrice.Sub(entry.price).Mul(matched)
	pnlPct := 0.0
	if !entry.price.IsZero() {
		pnlPct = exitPrice.Sub(entry.price).Div(entry.price).InexactFloat64()
	}
	holdDays := stats.CalendarDays(entry.date, exitDate)
	if holdDays < 0 {
		holdDays = 0
	}
	return models.RoundTrip{
		Ticker:     ticker,
		EntryDate:  entry.date,
		ExitDate:   exitDate,
		EntryPrice: entry.price.InexactFloat64(),
		ExitPrice:  exitPrice.InexactFloat64(),
		Quantity:   matched.InexactFloat64(),
		HoldDays:   holdDays,
		PnL:        pnl.InexactFloat64(),
		PnLPct:     pnlPct,
	}
}

// OpenQuantity returns the total quantity still held in lots of ticker.
func (r Reconstruction) OpenQuantity(ticker string) float64 {
	total := decimal.Zero
	for _, l := range r.OpenLots[ticker] {
		total = total.Add(decimal.NewFromFloat(l.Remaining))
	}
	return total.InexactFloat64()
}
