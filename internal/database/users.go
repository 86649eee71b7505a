package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eDyablo/finance/internal/models"
)

// CreateUser inserts a new user row with its opening cash balance
func (db *DB) CreateUser(ctx context.Context, name, hash string, cash decimal.Decimal) (*models.User, error) {
	query := `
		INSERT INTO users (name, hash, cash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	user := &models.User{
		Name: name,
		Hash: hash,
		Cash: cash,
	}
	err := db.conn.QueryRowContext(ctx, query, name, hash, cash).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UserByID retrieves a user by primary key
func (db *DB) UserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, name, hash, cash FROM users WHERE id = $1`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, id))
}

// UserByName retrieves a user by its unique name
func (db *DB) UserByName(ctx context.Context, name string) (*models.User, error) {
	query := `SELECT id, name, hash, cash FROM users WHERE name = $1`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, name))
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Hash, &u.Cash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// UpdatePassword replaces the user's credential hash
func (db *DB) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	query := `UPDATE users SET hash = $2 WHERE id = $1`
	result, err := db.conn.ExecContext(ctx, query, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddCash adjusts the user's cash balance by delta
func (db *DB) AddCash(ctx context.Context, userID int64, delta decimal.Decimal) error {
	query := `UPDATE users SET cash = cash + $2 WHERE id = $1`
	result, err := db.conn.ExecContext(ctx, query, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust cash: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
