// Package sqlite implements the domain repositories on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"

	_ "modernc.org/sqlite"
)

var (
	_ domain.CredentialRepository = (*Store)(nil)
	_ domain.WishlistRepository   = (*Store)(nil)
	_ domain.AssignmentRepository = (*Store)(nil)
	_ domain.ClueRepository       = (*Store)(nil)
	_ domain.SessionRepository    = (*SessionRepo)(nil)
)

// Store provides SQLite-backed persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer keeps the version check and the write in one critical
	// section without relying on SQLITE_BUSY retries.
	sqlDB.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{sqlDB: sqlDB}
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credentials (participant TEXT PRIMARY KEY, password_hash TEXT NOT NULL, created_at INTEGER NOT NULL, updated_at INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, participant TEXT NOT NULL, expires_at INTEGER NOT NULL, created_at INTEGER NOT NULL)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		`CREATE TABLE IF NOT EXISTS wishlists (participant TEXT PRIMARY KEY, body TEXT NOT NULL, updated_at INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS assignments (cycle TEXT PRIMARY KEY, pairs_json TEXT NOT NULL, version INTEGER NOT NULL CHECK(version > 0), updated_at INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS clues (recipient TEXT PRIMARY KEY, clue1 TEXT NOT NULL, clue2 TEXT NOT NULL, clue3 TEXT NOT NULL, updated_at INTEGER NOT NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := s.sqlDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- CredentialRepository ---

// GetCredential retrieves the credential of a participant.
func (s *Store) GetCredential(ctx context.Context, participant string) (*domain.Credential, error) {
	var (
		c                domain.Credential
		created, updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT participant, password_hash, created_at, updated_at FROM credentials WHERE participant = ?`,
		participant,
	).Scan(&c.Participant, &c.PasswordHash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	c.CreatedAt = unixMillisToTime(created)
	c.UpdatedAt = unixMillisToTime(updated)
	return &c, nil
}

// CreateCredential stores a new credential.
func (s *Store) CreateCredential(ctx context.Context, participant, passwordHash string) error {
	now := toMillis(time.Now())
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO credentials (participant, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(participant) DO NOTHING`,
		participant, passwordHash, now, now,
	)
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyRegistered
	}
	return nil
}

// UpdateCredential replaces the password hash of an existing credential.
func (s *Store) UpdateCredential(ctx context.Context, participant, passwordHash string) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE credentials SET password_hash = ?, updated_at = ? WHERE participant = ?`,
		passwordHash, toMillis(time.Now()), participant,
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUnknownParticipant
	}
	return nil
}

// CredentialExists reports whether the participant is registered.
func (s *Store) CredentialExists(ctx context.Context, participant string) (bool, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM credentials WHERE participant = ?`, participant,
	).Scan(&n)
	return n > 0, err
}

// --- WishlistRepository ---

// GetWishlist retrieves a wishlist.
func (s *Store) GetWishlist(ctx context.Context, participant string) (*domain.Wishlist, error) {
	var (
		w       domain.Wishlist
		updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT participant, body, updated_at FROM wishlists WHERE participant = ?`, participant,
	).Scan(&w.Participant, &w.Text, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}
	w.UpdatedAt = unixMillisToTime(updated)
	return &w, nil
}

// SaveWishlist creates or overwrites a wishlist.
func (s *Store) SaveWishlist(ctx context.Context, participant, text string) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO wishlists (participant, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(participant) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		participant, text, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save wishlist: %w", err)
	}
	return nil
}

// WishlistExists reports whether a wishlist was submitted.
func (s *Store) WishlistExists(ctx context.Context, participant string) (bool, error) {
	var n int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM wishlists WHERE participant = ?`, participant,
	).Scan(&n)
	return n > 0, err
}

// --- AssignmentRepository ---

// GetAssignments loads the assignment document of a cycle.
func (s *Store) GetAssignments(ctx context.Context, cycle string) (*domain.CycleAssignments, error) {
	var (
		raw     string
		version int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT pairs_json, version FROM assignments WHERE cycle = ?`, cycle,
	).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.CycleAssignments{Cycle: cycle, Pairs: domain.AssignmentMap{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignments: %w", err)
	}
	pairs := domain.AssignmentMap{}
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("decode assignments %s: %w", cycle, err)
	}
	return &domain.CycleAssignments{Cycle: cycle, Pairs: pairs, Version: version}, nil
}

// SaveAssignments writes the document if the stored version still equals
// expectedVersion.
func (s *Store) SaveAssignments(ctx context.Context, cycle string, expectedVersion int64, pairs domain.AssignmentMap) (int64, error) {
	if err := pairs.Validate(); err != nil {
		return 0, err
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return 0, err
	}
	now := toMillis(time.Now())

	var res sql.Result
	if expectedVersion == 0 {
		res, err = s.sqlDB.ExecContext(ctx,
			`INSERT INTO assignments (cycle, pairs_json, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(cycle) DO NOTHING`,
			cycle, string(raw), now,
		)
	} else {
		res, err = s.sqlDB.ExecContext(ctx,
			`UPDATE assignments SET pairs_json = ?, version = version + 1, updated_at = ?
			 WHERE cycle = ? AND version = ?`,
			string(raw), now, cycle, expectedVersion,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("save assignments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("save assignments: %w", err)
	}
	if n == 0 {
		return 0, domain.ErrConcurrentWriteConflict
	}
	return expectedVersion + 1, nil
}

// --- ClueRepository ---

// GetClues retrieves the clue bundle left for a recipient.
func (s *Store) GetClues(ctx context.Context, recipient string) (*domain.ClueBundle, error) {
	var (
		b       domain.ClueBundle
		updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT recipient, clue1, clue2, clue3, updated_at FROM clues WHERE recipient = ?`, recipient,
	).Scan(&b.Recipient, &b.Clue1, &b.Clue2, &b.Clue3, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clues: %w", err)
	}
	b.UpdatedAt = unixMillisToTime(updated)
	return &b, nil
}

// SaveClues replaces the clue bundle of a recipient.
func (s *Store) SaveClues(ctx context.Context, bundle domain.ClueBundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO clues (recipient, clue1, clue2, clue3, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(recipient) DO UPDATE SET clue1 = excluded.clue1, clue2 = excluded.clue2,
		 clue3 = excluded.clue3, updated_at = excluded.updated_at`,
		bundle.Recipient, bundle.Clue1, bundle.Clue2, bundle.Clue3, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save clues: %w", err)
	}
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence on a Store.
type SessionRepo struct {
	s *Store
}

// NewSessionRepo wraps a Store as a SessionRepository.
func NewSessionRepo(s *Store) *SessionRepo {
	return &SessionRepo{s: s}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, participant, token string, expiresAt time.Time) error {
	_, err := r.s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (token, participant, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		token, participant, toMillis(expiresAt), toMillis(time.Now()),
	)
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var (
		sess             domain.Session
		expires, created int64
	)
	err := r.s.sqlDB.QueryRowContext(ctx,
		`SELECT token, participant, expires_at, created_at FROM sessions WHERE token = ?`, token,
	).Scan(&sess.Token, &sess.Participant, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.ExpiresAt = unixMillisToTime(expires)
	sess.CreatedAt = unixMillisToTime(created)
	return &sess, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, toMillis(time.Now()))
	return err
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func unixMillisToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}
