// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// CredentialService handles registration, password checks and login sessions.
type CredentialService struct {
	creds    domain.CredentialRepository
	sessions domain.SessionRepository
	roster   *domain.Roster
	cost     int
	ttl      time.Duration
}

// NewCredentialService creates a new credential service.
func NewCredentialService(creds domain.CredentialRepository, sessions domain.SessionRepository, roster *domain.Roster) *CredentialService {
	return &CredentialService{
		creds:    creds,
		sessions: sessions,
		roster:   roster,
		cost:     bcrypt.DefaultCost,
		ttl:      DefaultSessionTTL,
	}
}

// WithHashCost overrides the bcrypt cost.
func (s *CredentialService) WithHashCost(cost int) *CredentialService {
	s.cost = cost
	return s
}

// WithSessionTTL overrides the session lifetime.
func (s *CredentialService) WithSessionTTL(ttl time.Duration) *CredentialService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// SessionTTL returns how long issued sessions stay valid.
func (s *CredentialService) SessionTTL() time.Duration {
	return s.ttl
}

// Register creates the credential of a roster participant.
func (s *CredentialService) Register(ctx context.Context, name, password, confirm string) error {
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	if !s.roster.Contains(name) {
		return domain.ErrUnknownParticipant
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	return s.creds.CreateCredential(ctx, name, string(hash))
}

// Verify checks a name and password against the stored credential.
func (s *CredentialService) Verify(ctx context.Context, name, password string) error {
	if !s.roster.Contains(name) {
		return domain.ErrInvalidCredential
	}
	cred, err := s.creds.GetCredential(ctx, name)
	if err != nil {
		return err
	}
	if cred == nil || cred.PasswordHash == "" {
		return domain.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return domain.ErrInvalidCredential
	}
	return nil
}

// ResetPassword replaces the password of an already registered participant.
func (s *CredentialService) ResetPassword(ctx context.Context, name, password, confirm string) error {
	if err := checkNewPassword(password, confirm); err != nil {
		return err
	}
	exists, err := s.creds.CredentialExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUnknownParticipant
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	return s.creds.UpdateCredential(ctx, name, string(hash))
}

// StartSession issues a session token for an authenticated participant.
func (s *CredentialService) StartSession(ctx context.Context, participant string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	_ = s.sessions.DeleteExpired(ctx)
	if err := s.sessions.Create(ctx, participant, token, time.Now().Add(s.ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// EndSession invalidates a session.
func (s *CredentialService) EndSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession returns the participant behind a session token.
func (s *CredentialService) ValidateSession(ctx context.Context, token string) (string, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", domain.ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return "", domain.ErrSessionExpired
	}
	if !s.roster.Contains(session.Participant) {
		_ = s.sessions.Delete(ctx, token)
		return "", domain.ErrUnknownParticipant
	}
	return session.Participant, nil
}

// LoginWithIdentity creates a session for an identity already authenticated
// elsewhere (e.g. via SSO). Only roster participants are accepted.
func (s *CredentialService) LoginWithIdentity(ctx context.Context, name string) (string, error) {
	if !s.roster.Contains(name) {
		return "", domain.ErrUnknownParticipant
	}
	return s.StartSession(ctx, name)
}

func checkNewPassword(password, confirm string) error {
	if strings.TrimSpace(password) == "" || strings.TrimSpace(confirm) == "" {
		return domain.ErrEmptyCredential
	}
	if len(password) > domain.MaxPasswordBytes {
		return domain.ErrCredentialTooLong
	}
	if password != confirm {
		return domain.ErrCredentialMismatch
	}
	return nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
