package models

import (
	"strings"
	"time"
)

// Side is the direction carried by a trade. Quantities are always positive.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// InstrumentType is the asset class of a traded ticker.
type InstrumentType string

const (
	InstrumentStock  InstrumentType = "stock"
	InstrumentETF    InstrumentType = "etf"
	InstrumentOption InstrumentType = "option"
	InstrumentCrypto InstrumentType = "crypto"
	InstrumentOther  InstrumentType = "other"
)

// TxKind separates trades from cash events that share the same stream.
type TxKind string

const (
	KindTrade    TxKind = "TRADE"
	KindDividend TxKind = "DIVIDEND"
	KindTransfer TxKind = "TRANSFER"
)

// DefaultAccount is used when a trade carries no account identifier.
const DefaultAccount = "default"

// Trade is one normalized row of a trader's history.
type Trade struct {
	Account        string         `json:"account,omitempty"`
	Ticker         string         `json:"ticker"`
	Side           Side           `json:"side"`
	Quantity       float64        `json:"quantity"`
	Price          float64        `json:"price"`
	Timestamp      time.Time      `json:"timestamp"`
	Fees           float64        `json:"fees"`
	InstrumentType InstrumentType `json:"instrument_type"`
	Kind           TxKind         `json:"kind,omitempty"` // empty means TRADE
}

// Value is the gross dollar value of the trade.
func (t Trade) Value() float64 {
	return t.Quantity * t.Price
}

// IsTrade reports whether the row is a buy or sell rather than a cash event.
func (t Trade) IsTrade() bool {
	return t.Kind == "" || t.Kind == KindTrade
}

// AccountID returns the account, falling back to DefaultAccount.
func (t Trade) AccountID() string {
	if a := strings.TrimSpace(t.Account); a != "" {
		return a
	}
	return DefaultAccount
}

// IsBuy reports whether the trade adds long exposure.
func (t Trade) IsBuy() bool { return t.Side == SideBuy }

// IsSell reports whether the trade removes long exposure.
func (t Trade) IsSell() bool { return t.Side == SideSell }
