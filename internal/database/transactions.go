package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eDyablo/finance/internal/models"
)

// HoldingsFor derives the user's current holdings by summing signed
// transaction amounts per symbol, keeping only positive net positions
func (db *DB) HoldingsFor(ctx context.Context, userID int64) ([]models.Holding, error) {
	query := `
		SELECT symbol, SUM(amount) AS shares
		FROM transactions
		WHERE user_id = $1
		GROUP BY symbol
		HAVING SUM(amount) > 0
		ORDER BY symbol
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Symbol, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}

	return holdings, nil
}

// SharesHeld returns the net shares of one symbol currently held by a user
func (db *DB) SharesHeld(ctx context.Context, userID int64, symbol string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND symbol = $2
	`
	var shares int64
	if err := db.conn.QueryRowContext(ctx, query, userID, symbol).Scan(&shares); err != nil {
		return 0, fmt.Errorf("failed to sum shares: %w", err)
	}
	return shares, nil
}

// TransactionsFor returns the user's full ledger, newest first
func (db *DB) TransactionsFor(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, amount, price, time
		FROM transactions
		WHERE user_id = $1
		ORDER BY time DESC, id DESC
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Amount, &t.Price, &t.Time); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return transactions, nil
}

// ExecuteTrade appends a ledger entry and adjusts the user's cash as one
// database transaction. The user row is locked for the duration, cash and
// held shares are re-checked under that lock, so concurrent trades on the
// same user serialize instead of double-spending.
func (db *DB) ExecuteTrade(ctx context.Context, t *models.Transaction) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin trade: %w", err)
	}
	defer tx.Rollback()

	var cash decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT cash FROM users WHERE id = $1 FOR UPDATE`, t.UserID).Scan(&cash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock user row: %w", err)
	}

	// cost is signed the same way as amount: positive drains cash,
	// negative credits it
	cost := t.Price.Mul(decimal.NewFromInt(t.Amount))

	if t.Amount > 0 && cash.LessThan(cost) {
		return models.ErrInsufficientCash
	}

	if t.Amount < 0 {
		var held int64
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1 AND symbol = $2`,
			t.UserID, t.Symbol,
		).Scan(&held)
		if err != nil {
			return fmt.Errorf("failed to sum held shares: %w", err)
		}
		if held < -t.Amount {
			return models.ErrInsufficientShares
		}
	}

	if t.Time.IsZero() {
		t.Time = time.Now()
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, symbol, amount, price, time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.UserID, t.Symbol, t.Amount, t.Price, t.Time).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET cash = cash - $2 WHERE id = $1`, t.UserID, cost)
	if err != nil {
		return fmt.Errorf("failed to adjust cash: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trade: %w", err)
	}
	return nil
}
