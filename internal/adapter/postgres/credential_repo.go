package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"
)

var (
	_ domain.CredentialRepository = (*DB)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
)

// GetCredential retrieves the credential of a participant.
func (d *DB) GetCredential(ctx context.Context, participant string) (*domain.Credential, error) {
	var c domain.Credential
	err := d.sql.QueryRowContext(ctx,
		"SELECT participant, password_hash, created_at, updated_at FROM credentials WHERE participant = $1",
		participant,
	).Scan(&c.Participant, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCredential stores a new credential.
func (d *DB) CreateCredential(ctx context.Context, participant, passwordHash string) error {
	now := time.Now().UTC()
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO credentials (participant, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $3)",
		participant, passwordHash, now,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyRegistered
	}
	return err
}

// UpdateCredential replaces the password hash of an existing credential.
func (d *DB) UpdateCredential(ctx context.Context, participant, passwordHash string) error {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE credentials SET password_hash = $1, updated_at = $2 WHERE participant = $3",
		passwordHash, time.Now().UTC(), participant,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUnknownParticipant
	}
	return nil
}

// CredentialExists reports whether the participant is registered.
func (d *DB) CredentialExists(ctx context.Context, participant string) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM credentials WHERE participant = $1)", participant,
	).Scan(&exists)
	return exists, err
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, participant, token string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (participant, token, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		participant, token, expiresAt, time.Now(),
	)
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, participant, expires_at, created_at FROM sessions WHERE token = $1",
		token,
	).Scan(&s.Token, &s.Participant, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", time.Now())
	return err
}
