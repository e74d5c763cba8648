package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TradeRecord is a persisted trade stream row.
type TradeRecord struct {
	gorm.Model
	Account        string    `gorm:"index:idx_account_ts;not null"`
	Seq            int       `gorm:"not null"` // original file order, breaks timestamp ties
	Ticker         string    `gorm:"not null"`
	Side           string    `gorm:"size:8"`
	Quantity       float64   `gorm:"not null"`
	Price          float64   `gorm:"not null"`
	Timestamp      time.Time `gorm:"index:idx_account_ts"`
	Fees           float64
	InstrumentType string `gorm:"size:16"`
	Kind           string `gorm:"size:16"`
}

// ToTrade converts the row back into a domain trade.
func (r TradeRecord) ToTrade() Trade {
	return Trade{
		Account:        r.Account,
		Ticker:         r.Ticker,
		Side:           Side(r.Side),
		Quantity:       r.Quantity,
		Price:          r.Price,
		Timestamp:      r.Timestamp,
		Fees:           r.Fees,
		InstrumentType: InstrumentType(r.InstrumentType),
		Kind:           TxKind(r.Kind),
	}
}

// NewTradeRecord builds a row for t at position seq of its source stream.
func NewTradeRecord(t Trade, seq int) TradeRecord {
	return TradeRecord{
		Account:        t.AccountID(),
		Seq:            seq,
		Ticker:         t.Ticker,
		Side:           string(t.Side),
		Quantity:       t.Quantity,
		Price:          t.Price,
		Timestamp:      t.Timestamp,
		Fees:           t.Fees,
		InstrumentType: string(t.InstrumentType),
		Kind:           string(t.Kind),
	}
}

// ProfileRecord is one persisted profiling run.
type ProfileRecord struct {
	gorm.Model
	RunID            string `gorm:"uniqueIndex;size:36"`
	Account          string `gorm:"index"`
	Dominant         string
	Confidence       float64
	Method           string
	TotalFeatures    int
	ComputedFeatures int
	NullFeatures     int
	ModuleErrors     int
	Features         datatypes.JSON
	Traits           datatypes.JSON
	Distribution     datatypes.JSON
	Holdings         datatypes.JSON
}
