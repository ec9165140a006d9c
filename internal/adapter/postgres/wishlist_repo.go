package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"
)

var _ domain.WishlistRepository = (*DB)(nil)

// GetWishlist retrieves a participant's wishlist.
func (d *DB) GetWishlist(ctx context.Context, participant string) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := d.sql.QueryRowContext(ctx,
		"SELECT participant, body, updated_at FROM wishlists WHERE participant = $1;", participant,
	).Scan(&w.Participant, &w.Text, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// SaveWishlist creates or overwrites a wishlist.
func (d *DB) SaveWishlist(ctx context.Context, participant, text string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO wishlists(participant, body, updated_at) VALUES($1, $2, $3)
		 ON CONFLICT(participant) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at;`,
		participant, text, time.Now().UTC(),
	)
	return err
}

// WishlistExists reports whether a wishlist was submitted.
func (d *DB) WishlistExists(ctx context.Context, participant string) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM wishlists WHERE participant = $1);", participant,
	).Scan(&exists)
	return exists, err
}
