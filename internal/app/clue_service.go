package app

import (
	"context"

	"github.com/shreya0626/secret-santa/internal/domain"
)

// ClueService is the clue exchange between a santa and their recipient.
// It does not check who is writing; the workflow only lets a santa write
// for the recipient they drew.
type ClueService struct {
	repo domain.ClueRepository
}

// NewClueService creates a ClueService backed by the given repository.
func NewClueService(repo domain.ClueRepository) *ClueService {
	return &ClueService{repo: repo}
}

// SaveClues replaces the whole clue bundle for recipient.
func (s *ClueService) SaveClues(ctx context.Context, recipient, clue1, clue2, clue3 string) error {
	return s.repo.SaveClues(ctx, domain.ClueBundle{
		Recipient: recipient,
		Clue1:     clue1,
		Clue2:     clue2,
		Clue3:     clue3,
	})
}

// ReadClues returns the clues left for recipient, or nil if none were written.
func (s *ClueService) ReadClues(ctx context.Context, recipient string) (*domain.ClueBundle, error) {
	return s.repo.GetClues(ctx, recipient)
}
