package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eDyablo/finance/internal/models"
)

// ProfileByUser retrieves the profile row for a user
func (db *DB) ProfileByUser(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT id, user_id, first_name, last_name FROM profiles WHERE user_id = $1`

	var p models.Profile
	var firstName, lastName sql.NullString
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.UserID, &firstName, &lastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if firstName.Valid {
		p.FirstName = firstName.String
	}
	if lastName.Valid {
		p.LastName = lastName.String
	}
	return &p, nil
}

// SaveProfile inserts the profile on first edit, updates it afterwards
func (db *DB) SaveProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, first_name, last_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
		RETURNING id
	`
	err := db.conn.QueryRowContext(ctx, query, p.UserID, p.FirstName, p.LastName).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
