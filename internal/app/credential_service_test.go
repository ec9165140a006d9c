package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockCredentialRepo struct {
	getFn    func(ctx context.Context, participant string) (*domain.Credential, error)
	createFn func(ctx context.Context, participant, passwordHash string) error
	updateFn func(ctx context.Context, participant, passwordHash string) error
	existsFn func(ctx context.Context, participant string) (bool, error)
}

func (m *mockCredentialRepo) GetCredential(ctx context.Context, participant string) (*domain.Credential, error) {
	if m.getFn != nil {
		return m.getFn(ctx, participant)
	}
	return nil, nil
}

func (m *mockCredentialRepo) CreateCredential(ctx context.Context, participant, passwordHash string) error {
	if m.createFn != nil {
		return m.createFn(ctx, participant, passwordHash)
	}
	return nil
}

func (m *mockCredentialRepo) UpdateCredential(ctx context.Context, participant, passwordHash string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, participant, passwordHash)
	}
	return nil
}

func (m *mockCredentialRepo) CredentialExists(ctx context.Context, participant string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, participant)
	}
	return false, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, participant, token string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, participant, token string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, participant, token, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func testRoster(t *testing.T) *domain.Roster {
	t.Helper()
	r, err := domain.NewRoster(domain.DefaultRoster)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCredentialService_Register_Validation(t *testing.T) {
	created := false
	creds := &mockCredentialRepo{
		createFn: func(ctx context.Context, participant, passwordHash string) error {
			created = true
			return nil
		},
	}
	svc := NewCredentialService(creds, &mockSessionRepo{}, testRoster(t)).WithHashCost(bcrypt.MinCost)

	tests := []struct {
		name     string
		user     string
		password string
		confirm  string
		want     error
	}{
		{"blank password", "Shreya", "  ", "  ", domain.ErrEmptyCredential},
		{"blank confirmation", "Shreya", "secret", "", domain.ErrEmptyCredential},
		{"mismatch", "Shreya", "secret", "secreT", domain.ErrCredentialMismatch},
		{"over 72 bytes", "Shreya", strings.Repeat("a", 73), strings.Repeat("a", 73), domain.ErrCredentialTooLong},
		{"multibyte over 72 bytes", "Shreya", strings.Repeat("é", 37), strings.Repeat("é", 37), domain.ErrCredentialTooLong},
		{"not on roster", "Mallory", "secret", "secret", domain.ErrUnknownParticipant},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Register(context.Background(), tc.user, tc.password, tc.confirm)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if created {
		t.Error("no credential should be created for invalid input")
	}
}

func TestCredentialService_Register_StoresHash(t *testing.T) {
	var stored string
	creds := &mockCredentialRepo{
		createFn: func(ctx context.Context, participant, passwordHash string) error {
			if participant != "Shreya" {
				t.Errorf("expected Shreya, got %s", participant)
			}
			stored = passwordHash
			return nil
		},
	}
	svc := NewCredentialService(creds, &mockSessionRepo{}, testRoster(t)).WithHashCost(bcrypt.MinCost)

	if err := svc.Register(context.Background(), "Shreya", "secret", "secret"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored == "" || stored == "secret" {
		t.Fatalf("expected a hash, got %q", stored)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("secret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestCredentialService_Register_AlreadyRegistered(t *testing.T) {
	creds := &mockCredentialRepo{
		createFn: func(ctx context.Context, participant, passwordHash string) error {
			return domain.ErrAlreadyRegistered
		},
	}
	svc := NewCredentialService(creds, &mockSessionRepo{}, testRoster(t)).WithHashCost(bcrypt.MinCost)

	err := svc.Register(context.Background(), "Shreya", "secret", "secret")
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestCredentialService_Verify(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	creds := &mockCredentialRepo{
		getFn: func(ctx context.Context, participant string) (*domain.Credential, error) {
			if participant != "Govind" {
				return nil, nil
			}
			return &domain.Credential{Participant: "Govind", PasswordHash: string(hash)}, nil
		},
	}
	svc := NewCredentialService(creds, &mockSessionRepo{}, testRoster(t))
	ctx := context.Background()

	if err := svc.Verify(ctx, "Govind", "correct"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Verify(ctx, "Govind", "wrong"); err != domain.ErrInvalidCredential {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
	if err := svc.Verify(ctx, "Shreya", "correct"); err != domain.ErrInvalidCredential {
		t.Errorf("expected ErrInvalidCredential for unregistered, got %v", err)
	}
	if err := svc.Verify(ctx, "Mallory", "correct"); err != domain.ErrInvalidCredential {
		t.Errorf("expected ErrInvalidCredential off roster, got %v", err)
	}
}

func TestCredentialService_ResetPassword(t *testing.T) {
	var updated string
	creds := &mockCredentialRepo{
		existsFn: func(ctx context.Context, participant string) (bool, error) {
			return participant == "Govind", nil
		},
		updateFn: func(ctx context.Context, participant, passwordHash string) error {
			updated = passwordHash
			return nil
		},
	}
	svc := NewCredentialService(creds, &mockSessionRepo{}, testRoster(t)).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, "Shreya", "new", "new"); !errors.Is(err, domain.ErrUnknownParticipant) {
		t.Errorf("expected ErrUnknownParticipant, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "Govind", "new", "old"); !errors.Is(err, domain.ErrCredentialMismatch) {
		t.Errorf("expected ErrCredentialMismatch, got %v", err)
	}
	long := strings.Repeat("x", 100)
	if err := svc.ResetPassword(ctx, "Govind", long, long); !errors.Is(err, domain.ErrCredentialTooLong) {
		t.Errorf("expected ErrCredentialTooLong, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "Govind", "", ""); !errors.Is(err, domain.ErrEmptyCredential) {
		t.Errorf("expected ErrEmptyCredential, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "Govind", "new", "new"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated), []byte("new")) != nil {
		t.Error("expected updated hash to match new password")
	}
}

func TestCredentialService_StartSession(t *testing.T) {
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, participant, token string, expiresAt time.Time) error {
			if participant != "Shreya" {
				t.Errorf("expected participant Shreya, got %s", participant)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			if time.Until(expiresAt) > time.Hour+time.Minute {
				t.Errorf("expected 1h ttl, expires at %v", expiresAt)
			}
			return nil
		},
	}
	svc := NewCredentialService(&mockCredentialRepo{}, sessions, testRoster(t)).WithSessionTTL(time.Hour)

	token, err := svc.StartSession(context.Background(), "Shreya")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestCredentialService_ValidateSession_Valid(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{Token: tok, Participant: "Shreya", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	svc := NewCredentialService(&mockCredentialRepo{}, sessions, testRoster(t))

	who, err := svc.ValidateSession(context.Background(), "validtoken")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if who != "Shreya" {
		t.Errorf("expected Shreya, got %s", who)
	}
}

func TestCredentialService_ValidateSession_Expired(t *testing.T) {
	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{Token: tok, Participant: "Shreya", ExpiresAt: time.Now().Add(-time.Hour)}, nil
		},
		deleteFn: func(ctx context.Context, tok string) error {
			deleted = true
			return nil
		},
	}
	svc := NewCredentialService(&mockCredentialRepo{}, sessions, testRoster(t))

	_, err := svc.ValidateSession(context.Background(), "expiredtoken")
	if err != domain.ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected session to be deleted")
	}
}

func TestCredentialService_ValidateSession_Missing(t *testing.T) {
	svc := NewCredentialService(&mockCredentialRepo{}, &mockSessionRepo{}, testRoster(t))
	if _, err := svc.ValidateSession(context.Background(), "nope"); err != domain.ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCredentialService_LoginWithIdentity(t *testing.T) {
	svc := NewCredentialService(&mockCredentialRepo{}, &mockSessionRepo{}, testRoster(t))
	ctx := context.Background()

	if _, err := svc.LoginWithIdentity(ctx, "Mallory"); !errors.Is(err, domain.ErrUnknownParticipant) {
		t.Errorf("expected ErrUnknownParticipant, got %v", err)
	}
	token, err := svc.LoginWithIdentity(ctx, "Harini")
	if err != nil || token == "" {
		t.Fatalf("expected a token, got %q, %v", token, err)
	}
}

func TestCredentialService_Register_72BytesAccepted(t *testing.T) {
	svc := NewCredentialService(&mockCredentialRepo{}, &mockSessionRepo{}, testRoster(t)).WithHashCost(bcrypt.MinCost)
	pw := strings.Repeat("a", 72)
	if err := svc.Register(context.Background(), "Shreya", pw, pw); err != nil {
		t.Fatalf("expected a 72-byte password to be accepted, got %v", err)
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare("state-1", "state-1") {
		t.Error("expected equal strings to match")
	}
	for _, other := range []string{"state-2", "state-", "", "state-11"} {
		if ConstantTimeCompare("state-1", other) {
			t.Errorf("expected %q not to match", other)
		}
	}
}
