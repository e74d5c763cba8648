package models

import "time"

// Direction is the sign of a running position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionFlat  Direction = "flat"
)

// DirectionOf maps a signed quantity to its direction.
func DirectionOf(qty float64) Direction {
	switch {
	case qty > 0:
		return DirectionLong
	case qty < 0:
		return DirectionShort
	default:
		return DirectionFlat
	}
}

// Position is the running inventory of one (account, ticker) key.
type Position struct {
	Account        string         `json:"account"`
	Ticker         string         `json:"ticker"`
	Quantity       float64        `json:"quantity"` // >0 long, <0 short, 0 flat
	AvgCost        float64        `json:"avg_cost"`
	InstrumentType InstrumentType `json:"instrument_type"`
	LastSeq        int            `json:"last_seq"`
}

// Direction returns the direction of the position.
func (p Position) Direction() Direction {
	return DirectionOf(p.Quantity)
}

// RoundTrip is a matched entry/exit pair produced by FIFO lot matching.
type RoundTrip struct {
	Ticker     string    `json:"ticker"`
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   float64   `json:"quantity"`
	HoldDays   int       `json:"hold_days"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
}

// IsWin reports a strictly profitable trip.
func (r RoundTrip) IsWin() bool { return r.PnL > 0 }

// IsLoss reports a strictly losing trip.
func (r RoundTrip) IsLoss() bool { return r.PnL < 0 }
