// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	credentials map[string]*domain.Credential
	wishlists   map[string]*domain.Wishlist
	assignments map[string]*domain.CycleAssignments
	clues       map[string]*domain.ClueBundle
	sessions    map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		credentials: make(map[string]*domain.Credential),
		wishlists:   make(map[string]*domain.Wishlist),
		assignments: make(map[string]*domain.CycleAssignments),
		clues:       make(map[string]*domain.ClueBundle),
		sessions:    make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.CredentialRepository = (*DB)(nil)
var _ domain.WishlistRepository = (*DB)(nil)
var _ domain.AssignmentRepository = (*DB)(nil)
var _ domain.ClueRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// Close is a no-op; it lets DB stand in for the persistent stores.
func (db *DB) Close() error { return nil }

// --- CredentialRepository ---

// GetCredential retrieves the credential of a participant.
func (db *DB) GetCredential(ctx context.Context, participant string) (*domain.Credential, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if c, ok := db.credentials[participant]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// CreateCredential stores a new credential.
func (db *DB) CreateCredential(ctx context.Context, participant, passwordHash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.credentials[participant]; ok {
		return domain.ErrAlreadyRegistered
	}
	now := time.Now().UTC()
	db.credentials[participant] = &domain.Credential{
		Participant:  participant,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

// UpdateCredential replaces the password hash of an existing credential.
func (db *DB) UpdateCredential(ctx context.Context, participant, passwordHash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.credentials[participant]
	if !ok {
		return domain.ErrUnknownParticipant
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// CredentialExists reports whether the participant is registered.
func (db *DB) CredentialExists(ctx context.Context, participant string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.credentials[participant]
	return ok, nil
}

// --- WishlistRepository ---

// GetWishlist retrieves a wishlist.
func (db *DB) GetWishlist(ctx context.Context, participant string) (*domain.Wishlist, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if w, ok := db.wishlists[participant]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

// SaveWishlist creates or overwrites a wishlist.
func (db *DB) SaveWishlist(ctx context.Context, participant, text string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.wishlists[participant] = &domain.Wishlist{
		Participant: participant,
		Text:        text,
		UpdatedAt:   time.Now().UTC(),
	}
	return nil
}

// WishlistExists reports whether a wishlist was submitted.
func (db *DB) WishlistExists(ctx context.Context, participant string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, ok := db.wishlists[participant]
	return ok, nil
}

// --- AssignmentRepository ---

// GetAssignments returns a copy of the cycle document.
func (db *DB) GetAssignments(ctx context.Context, cycle string) (*domain.CycleAssignments, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	doc, ok := db.assignments[cycle]
	if !ok {
		return &domain.CycleAssignments{Cycle: cycle, Pairs: domain.AssignmentMap{}}, nil
	}
	return &domain.CycleAssignments{Cycle: cycle, Pairs: doc.Pairs.Clone(), Version: doc.Version}, nil
}

// SaveAssignments replaces the cycle document if its version is unchanged.
func (db *DB) SaveAssignments(ctx context.Context, cycle string, expectedVersion int64, pairs domain.AssignmentMap) (int64, error) {
	if err := pairs.Validate(); err != nil {
		return 0, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var current int64
	if doc, ok := db.assignments[cycle]; ok {
		current = doc.Version
	}
	if current != expectedVersion {
		return 0, domain.ErrConcurrentWriteConflict
	}
	db.assignments[cycle] = &domain.CycleAssignments{
		Cycle:   cycle,
		Pairs:   pairs.Clone(),
		Version: current + 1,
	}
	return current + 1, nil
}

// --- ClueRepository ---

// GetClues retrieves the clue bundle of a recipient.
func (db *DB) GetClues(ctx context.Context, recipient string) (*domain.ClueBundle, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if b, ok := db.clues[recipient]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

// SaveClues replaces the clue bundle of a recipient.
func (db *DB) SaveClues(ctx context.Context, bundle domain.ClueBundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	bundle.UpdatedAt = time.Now().UTC()
	db.clues[bundle.Recipient] = &bundle
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, participant, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:       token,
		Participant: participant,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
