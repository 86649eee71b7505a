package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the result of a symbol lookup against the external price service
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Trade event type constants
const (
	EventTradeExecuted  = "TRADE_EXECUTED"
	EventUserRegistered = "USER_REGISTERED"
)

// LedgerEvent represents a Kafka event emitted after a ledger mutation
type LedgerEvent struct {
	EventType string           `json:"event_type"`
	UserID    int64            `json:"user_id"`
	Symbol    string           `json:"symbol,omitempty"`
	Shares    int64            `json:"shares,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
