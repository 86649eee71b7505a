package models

import "errors"

// Business-rule errors shared by the store and the ledger service. The
// store re-checks both conditions under a row lock, so these can surface
// from either layer; the messages are user-facing.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInsufficientCash   = errors.New("not enough cash left")
	ErrInsufficientShares = errors.New("not enough shares owned")
)
