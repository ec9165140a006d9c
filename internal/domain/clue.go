package domain

import (
	"context"
	"errors"
	"time"
)

// ClueBundle is the set of three treasure-hunt hints a santa leaves for their
// recipient. It is keyed by the recipient, not by the santa.
type ClueBundle struct {
	Recipient string    `json:"recipient"`
	Clue1     string    `json:"clue1"`
	Clue2     string    `json:"clue2"`
	Clue3     string    `json:"clue3"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the bundle before it is stored.
func (b ClueBundle) Validate() error {
	if b.Recipient == "" {
		return errors.New("clue bundle: recipient is required")
	}
	return nil
}

// ClueRepository is the port for clue persistence. SaveClues replaces any
// existing bundle for the recipient; GetClues returns nil, nil when none exists.
type ClueRepository interface {
	GetClues(ctx context.Context, recipient string) (*ClueBundle, error)
	SaveClues(ctx context.Context, bundle ClueBundle) error
}
