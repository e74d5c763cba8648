// Package positions reconstructs inventory and realized round trips from a
// chronologically ordered trade stream.
package positions

import "trading-personality/internal/models"

// History is the shared reconstruction every feature module reads from. It is
// built once per run and treated as read-only afterwards.
type History struct {
	Trades      []models.Trade
	Enrichments []Enrichment // parallel to Trades
	Positions   []models.Position
	Trips       []models.RoundTrip
	OpenLots    map[string][]Lot
	Unmatched   map[string]float64
}

// Build runs the tracker and the reconstructor over trades.
func Build(trades []models.Trade) *History {
	tracker := NewTracker()
	enrichments := make([]Enrichment, len(trades))
	for i, t := range trades {
		enrichments[i] = tracker.Process(t)
	}
	rec := Reconstruct(trades)
	return &History{
		Trades:      trades,
		Enrichments: enrichments,
		Positions:   tracker.Positions(),
		Trips:       rec.Trips,
		OpenLots:    rec.OpenLots,
		Unmatched:   rec.Unmatched,
	}
}

// OpenPositions returns the non-flat final positions.
func (h *History) OpenPositions() []models.Position {
	var out []models.Position
	for _, p := range h.Positions {
		if p.Quantity != 0 {
			out = append(out, p)
		}
	}
	return out
}

// ClosingCount returns the number of trades that reduced an existing position.
func (h *History) ClosingCount() int {
	n := 0
	for _, e := range h.Enrichments {
		if e.IsClosing {
			n++
		}
	}
	return n
}
