package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shreya0626/secret-santa/internal/app"
	"github.com/shreya0626/secret-santa/internal/domain"
)

type mockWishlistRepo struct {
	getFn    func(ctx context.Context, participant string) (*domain.Wishlist, error)
	saveFn   func(ctx context.Context, participant, text string) error
	existsFn func(ctx context.Context, participant string) (bool, error)
}

func (m *mockWishlistRepo) GetWishlist(ctx context.Context, participant string) (*domain.Wishlist, error) {
	if m.getFn != nil {
		return m.getFn(ctx, participant)
	}
	return nil, nil
}

func (m *mockWishlistRepo) SaveWishlist(ctx context.Context, participant, text string) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, participant, text)
	}
	return nil
}

func (m *mockWishlistRepo) WishlistExists(ctx context.Context, participant string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, participant)
	}
	return false, nil
}

func TestWishlistService_Save(t *testing.T) {
	var saved string
	repo := &mockWishlistRepo{
		saveFn: func(ctx context.Context, participant, text string) error {
			saved = text
			return nil
		},
	}
	svc := app.NewWishlistService(repo)
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", domain.ErrEmptyWishlist},
		{"whitespace", " \n\t", domain.ErrEmptyWishlist},
		{"valid", "a warm hat", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Save(ctx, "Shreya", tc.text)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if saved != "a warm hat" {
		t.Errorf("expected text stored verbatim, got %q", saved)
	}
}

func TestWishlistService_Get(t *testing.T) {
	repo := &mockWishlistRepo{
		getFn: func(ctx context.Context, participant string) (*domain.Wishlist, error) {
			if participant == "Govind" {
				return &domain.Wishlist{Participant: "Govind", Text: "books"}, nil
			}
			return nil, nil
		},
	}
	svc := app.NewWishlistService(repo)

	w, err := svc.Get(context.Background(), "Govind")
	if err != nil || w.Text != "books" {
		t.Fatalf("Get(Govind) = %+v, %v", w, err)
	}
	if _, err := svc.Get(context.Background(), "Shreya"); !errors.Is(err, domain.ErrWishlistNotFound) {
		t.Errorf("expected ErrWishlistNotFound, got %v", err)
	}
}

func TestWishlistService_GetPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	svc := app.NewWishlistService(&mockWishlistRepo{
		getFn: func(ctx context.Context, participant string) (*domain.Wishlist, error) {
			return nil, boom
		},
	})
	if _, err := svc.Get(context.Background(), "Govind"); !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
}
