package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shreya0626/secret-santa/internal/domain"
)

var (
	_ domain.CredentialRepository = (*Store)(nil)
	_ domain.WishlistRepository   = (*Store)(nil)
	_ domain.AssignmentRepository = (*Store)(nil)
	_ domain.ClueRepository       = (*Store)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
)

const (
	prefixCredential = "cred/"
	prefixWishlist   = "wish/"
	prefixAssignment = "asgn/"
	prefixClue       = "clue/"
	prefixSession    = "sess/"
)

func key(prefix, id string) []byte {
	return []byte(prefix + id)
}

// getJSON decodes the value at k into v. It reports false when k is absent.
func getJSON(txn *badger.Txn, k []byte, v any) (bool, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, k []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(k, raw)
}

func (s *Store) exists(k []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(k)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// --- CredentialRepository ---

// GetCredential retrieves the credential of a participant.
func (s *Store) GetCredential(ctx context.Context, participant string) (*domain.Credential, error) {
	var (
		c     domain.Credential
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, key(prefixCredential, participant), &c)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// CreateCredential stores a new credential.
func (s *Store) CreateCredential(ctx context.Context, participant, passwordHash string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(prefixCredential, participant)
		if _, err := txn.Get(k); err == nil {
			return domain.ErrAlreadyRegistered
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		now := time.Now().UTC()
		return setJSON(txn, k, domain.Credential{
			Participant:  participant,
			PasswordHash: passwordHash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if errors.Is(err, badger.ErrConflict) {
		return domain.ErrAlreadyRegistered
	}
	return err
}

// UpdateCredential replaces the password hash of an existing credential.
func (s *Store) UpdateCredential(ctx context.Context, participant, passwordHash string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := key(prefixCredential, participant)
		var c domain.Credential
		found, err := getJSON(txn, k, &c)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrUnknownParticipant
		}
		c.PasswordHash = passwordHash
		c.UpdatedAt = time.Now().UTC()
		return setJSON(txn, k, c)
	})
}

// CredentialExists reports whether the participant is registered.
func (s *Store) CredentialExists(ctx context.Context, participant string) (bool, error) {
	return s.exists(key(prefixCredential, participant))
}

// --- WishlistRepository ---

// GetWishlist retrieves a wishlist.
func (s *Store) GetWishlist(ctx context.Context, participant string) (*domain.Wishlist, error) {
	var (
		w     domain.Wishlist
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, key(prefixWishlist, participant), &w)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &w, nil
}

// SaveWishlist creates or overwrites a wishlist.
func (s *Store) SaveWishlist(ctx context.Context, participant, text string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, key(prefixWishlist, participant), domain.Wishlist{
			Participant: participant,
			Text:        text,
			UpdatedAt:   time.Now().UTC(),
		})
	})
}

// WishlistExists reports whether a wishlist was submitted.
func (s *Store) WishlistExists(ctx context.Context, participant string) (bool, error) {
	return s.exists(key(prefixWishlist, participant))
}

// --- AssignmentRepository ---

type assignmentRecord struct {
	Pairs   domain.AssignmentMap `json:"pairs"`
	Version int64                `json:"version"`
}

// GetAssignments loads the assignment document of a cycle.
func (s *Store) GetAssignments(ctx context.Context, cycle string) (*domain.CycleAssignments, error) {
	var rec assignmentRecord
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, key(prefixAssignment, cycle), &rec)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get assignments: %w", err)
	}
	if rec.Pairs == nil {
		rec.Pairs = domain.AssignmentMap{}
	}
	return &domain.CycleAssignments{Cycle: cycle, Pairs: rec.Pairs, Version: rec.Version}, nil
}

// SaveAssignments writes the document if the stored version still equals
// expectedVersion. A transaction that loses to a concurrent commit on the same
// key is reported as a conflict as well.
func (s *Store) SaveAssignments(ctx context.Context, cycle string, expectedVersion int64, pairs domain.AssignmentMap) (int64, error) {
	if err := pairs.Validate(); err != nil {
		return 0, err
	}
	next := expectedVersion + 1
	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(prefixAssignment, cycle)
		var cur assignmentRecord
		if _, err := getJSON(txn, k, &cur); err != nil {
			return err
		}
		if cur.Version != expectedVersion {
			return domain.ErrConcurrentWriteConflict
		}
		return setJSON(txn, k, assignmentRecord{Pairs: pairs, Version: next})
	})
	if errors.Is(err, badger.ErrConflict) {
		return 0, domain.ErrConcurrentWriteConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

// --- ClueRepository ---

// GetClues retrieves the clue bundle left for a recipient.
func (s *Store) GetClues(ctx context.Context, recipient string) (*domain.ClueBundle, error) {
	var (
		b     domain.ClueBundle
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, key(prefixClue, recipient), &b)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &b, nil
}

// SaveClues replaces the clue bundle of a recipient.
func (s *Store) SaveClues(ctx context.Context, bundle domain.ClueBundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}
	bundle.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, key(prefixClue, bundle.Recipient), bundle)
	})
}

// --- SessionRepository ---

// SessionRepo stores sessions as entries that expire on their own.
type SessionRepo struct {
	s *Store
}

// NewSessionRepo wraps a Store as a SessionRepository.
func NewSessionRepo(s *Store) *SessionRepo {
	return &SessionRepo{s: s}
}

// Create creates a new session whose key expires with it.
func (r *SessionRepo) Create(ctx context.Context, participant, token string, expiresAt time.Time) error {
	raw, err := json.Marshal(domain.Session{
		Token:       token,
		Participant: participant,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return r.s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(prefixSession, token), raw).WithTTL(time.Until(expiresAt))
		return txn.SetEntry(e)
	})
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var (
		sess  domain.Session
		found bool
	)
	err := r.s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = getJSON(txn, key(prefixSession, token), &sess)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &sess, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	return r.s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(prefixSession, token))
	})
}

// DeleteExpired is a no-op; session keys carry their own TTL.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	return nil
}
