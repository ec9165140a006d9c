package domain

import (
	"context"
	"time"
)

// Wishlist holds the free-text gift ideas of one participant.
type Wishlist struct {
	Participant string    `json:"participant"`
	Text        string    `json:"text"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WishlistRepository is the port for wishlist persistence. GetWishlist
// returns nil, nil when nothing was submitted.
type WishlistRepository interface {
	GetWishlist(ctx context.Context, participant string) (*Wishlist, error)
	SaveWishlist(ctx context.Context, participant, text string) error
	WishlistExists(ctx context.Context, participant string) (bool, error)
}
