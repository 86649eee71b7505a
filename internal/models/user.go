package models

import (
	"github.com/shopspring/decimal"
)

// StartingCash is the balance every new account opens with.
var StartingCash = decimal.NewFromInt(10000)

// User represents a registered account with its virtual cash balance
type User struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Hash string          `json:"-"`
	Cash decimal.Decimal `json:"cash"`
}

// Profile is an optional 1:1 extension of User holding display names.
// It is created lazily on the first profile edit.
type Profile struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
