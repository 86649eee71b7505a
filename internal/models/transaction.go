package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction action labels derived from the sign of Amount
const (
	ActionPurchase = "purchase"
	ActionSale     = "sale"
)

// Transaction is an immutable ledger entry. Amount is signed: positive for
// buys, negative for sells. Rows are append-only; holdings are always
// derived by summing Amount per symbol, never stored.
type Transaction struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Symbol string          `json:"symbol"`
	Amount int64           `json:"amount"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

// Action returns the history label for the entry
func (t *Transaction) Action() string {
	if t.Amount < 0 {
		return ActionSale
	}
	return ActionPurchase
}

// Holding is a derived (symbol, net shares) pair for one user
type Holding struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}
