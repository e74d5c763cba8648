package positions

import (
	"fmt"
	"sort"

	"trading-personality/internal/models"

	"github.com/shopspring/decimal"
)

// Enrichment describes what a single trade did to its position.
type Enrichment struct {
	Seq                      int              `json:"seq"`
	Account                  string           `json:"account"`
	Ticker                   string           `json:"ticker"`
	IsOpening                bool             `json:"is_opening"`
	IsClosing                bool             `json:"is_closing"`
	PriorQuantity            float64          `json:"prior_quantity"`
	ResultingQuantity        float64          `json:"resulting_quantity"`
	PriorDirection           models.Direction `json:"prior_direction"`
	ResultingDirection       models.Direction `json:"resulting_direction"`
	PartialCloseWithReversal bool             `json:"partial_close_with_reversal"`
}

// IsPartialClose reports a close that leaves a same-direction remainder.
func (e Enrichment) IsPartialClose() bool {
	return e.IsClosing && !e.PartialCloseWithReversal && e.ResultingDirection == e.PriorDirection
}

type positionKey struct {
	account string
	ticker  string
}

type positionState struct {
	qty        decimal.Decimal
	avg        decimal.Decimal
	instrument models.InstrumentType
	lastSeq    int
}

// Tracker keeps the running signed inventory per (account, ticker). It owns
// its state exclusively; callers only ever see value snapshots.
type Tracker struct {
	positions map[positionKey]*positionState
	seq       int
}

// NewTracker creates a tracker with no positions.
func NewTracker() *Tracker {
	return &Tracker{positions: make(map[positionKey]*positionState)}
}

// Process applies one trade and reports the before/after state. Input must be
// validated: a trade with an empty ticker, a non-positive quantity or an
// unknown side panics.
func (t *Tracker) Process(trade models.Trade) Enrichment {
	seq := t.seq
	t.seq++

	k := positionKey{account: trade.AccountID(), ticker: trade.Ticker}
	st := t.positions[k]

	if !trade.IsTrade() {
		// Cash events leave inventory untouched.
		current := 0.0
		if st != nil {
			current = st.qty.InexactFloat64()
		}
		dir := models.DirectionOf(current)
		return Enrichment{
			Seq:                seq,
			Account:            k.account,
			Ticker:             k.ticker,
			PriorQuantity:      current,
			ResultingQuantity:  current,
			PriorDirection:     dir,
			ResultingDirection: dir,
		}
	}

	if trade.Ticker == "" || trade.Quantity <= 0 || (!trade.IsBuy() && !trade.IsSell()) {
		panic(fmt.Sprintf("positions: unvalidated trade at seq %d (ticker=%q side=%q quantity=%v)",
			seq, trade.Ticker, trade.Side, trade.Quantity))
	}

	if st == nil {
		st = &positionState{instrument: trade.InstrumentType}
		t.positions[k] = st
	}

	qty := decimal.NewFromFloat(trade.Quantity)
	price := decimal.NewFromFloat(trade.Price)
	delta := qty
	if trade.IsSell() {
		delta = qty.Neg()
	}

	prior := st.qty
	resulting := prior.Add(delta)

	e := Enrichment{
		Seq:                seq,
		Account:            k.account,
		Ticker:             k.ticker,
		PriorQuantity:      prior.InexactFloat64(),
		ResultingQuantity:  resulting.InexactFloat64(),
		PriorDirection:     models.DirectionOf(prior.InexactFloat64()),
		ResultingDirection: models.DirectionOf(resulting.InexactFloat64()),
	}

	switch {
	case prior.IsZero():
		e.IsOpening = true
		st.avg = price
	case prior.Sign() == delta.Sign():
		// Adding to the position: running weighted average.
		priorAbs := prior.Abs()
		st.avg = st.avg.Mul(priorAbs).Add(price.Mul(qty)).Div(priorAbs.Add(qty))
		e.IsOpening = true
	default:
		e.IsClosing = true
		if !resulting.IsZero() && resulting.Sign() != prior.Sign() {
			// Closed through zero: the remainder is a new position at this price.
			e.IsOpening = true
			e.PartialCloseWithReversal = true
			st.avg = price
		}
	}

	st.qty = resulting
	st.lastSeq = seq
	if trade.InstrumentType != "" {
		st.instrument = trade.InstrumentType
	}
	return e
}

// Position returns a snapshot of one key. Unknown keys are flat.
func (t *Tracker) Position(account, ticker string) models.Position {
	if account == "" {
		account = models.DefaultAccount
	}
	st := t.positions[positionKey{account: account, ticker: ticker}]
	if st == nil {
		return models.Position{Account: account, Ticker: ticker, LastSeq: -1}
	}
	return snapshot(account, ticker, st)
}

// Positions returns snapshots of every key ever touched, sorted by account then ticker.
func (t *Tracker) Positions() []models.Position {
	out := make([]models.Position, 0, len(t.positions))
	for k, st := range t.positions {
		out = append(out, snapshot(k.account, k.ticker, st))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Account != out[j].Account {
			return out[i].Account < out[j].Account
		}
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

func snapshot(account, ticker string, st *positionState) models.Position {
	return models.Position{
		Account:        account,
		Ticker:         ticker,
		Quantity:       st.qty.InexactFloat64(),
		AvgCost:        st.avg.InexactFloat64(),
		InstrumentType: st.instrument,
		LastSeq:        st.lastSeq,
	}
}
