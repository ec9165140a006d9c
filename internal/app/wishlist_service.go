package app

import (
	"context"
	"strings"

	"github.com/shreya0626/secret-santa/internal/domain"
)

// WishlistService encapsulates wishlist use cases.
type WishlistService struct {
	repo domain.WishlistRepository
}

// NewWishlistService creates a WishlistService backed by the given repository.
func NewWishlistService(repo domain.WishlistRepository) *WishlistService {
	return &WishlistService{repo: repo}
}

// Save validates and stores the wishlist of participant, replacing any
// previous one.
func (s *WishlistService) Save(ctx context.Context, participant, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyWishlist
	}
	return s.repo.SaveWishlist(ctx, participant, text)
}

// Get returns the wishlist of participant, or domain.ErrWishlistNotFound.
func (s *WishlistService) Get(ctx context.Context, participant string) (*domain.Wishlist, error) {
	w, err := s.repo.GetWishlist(ctx, participant)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrWishlistNotFound
	}
	return w, nil
}

// Submitted reports whether participant has a stored wishlist.
func (s *WishlistService) Submitted(ctx context.Context, participant string) (bool, error) {
	return s.repo.WishlistExists(ctx, participant)
}
