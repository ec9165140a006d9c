package domain

import (
	"context"
	"time"
)

// Credential is the stored secret of one participant. Only a one-way hash of
// the password is ever persisted.
type Credential struct {
	Participant  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an active login of a participant.
type Session struct {
	Token       string
	Participant string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// CredentialRepository defines the port for credential persistence operations.
//
// GetCredential returns nil, nil when the participant has no credential.
// CreateCredential must fail with ErrAlreadyRegistered when one exists, and
// UpdateCredential with ErrUnknownParticipant when none does.
type CredentialRepository interface {
	GetCredential(ctx context.Context, participant string) (*Credential, error)
	CreateCredential(ctx context.Context, participant, passwordHash string) error
	UpdateCredential(ctx context.Context, participant, passwordHash string) error
	CredentialExists(ctx context.Context, participant string) (bool, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, participant, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
