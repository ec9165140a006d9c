package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"
)

var _ domain.ClueRepository = (*DB)(nil)

// GetClues retrieves the clue bundle left for a recipient.
func (d *DB) GetClues(ctx context.Context, recipient string) (*domain.ClueBundle, error) {
	var b domain.ClueBundle
	err := d.sql.QueryRowContext(ctx,
		"SELECT recipient, clue1, clue2, clue3, updated_at FROM clues WHERE recipient = $1;", recipient,
	).Scan(&b.Recipient, &b.Clue1, &b.Clue2, &b.Clue3, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveClues replaces the clue bundle of a recipient.
func (d *DB) SaveClues(ctx context.Context, bundle domain.ClueBundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO clues(recipient, clue1, clue2, clue3, updated_at) VALUES($1, $2, $3, $4, $5)
		 ON CONFLICT(recipient) DO UPDATE SET clue1 = EXCLUDED.clue1, clue2 = EXCLUDED.clue2,
		 clue3 = EXCLUDED.clue3, updated_at = EXCLUDED.updated_at;`,
		bundle.Recipient, bundle.Clue1, bundle.Clue2, bundle.Clue3, time.Now().UTC(),
	)
	return err
}
