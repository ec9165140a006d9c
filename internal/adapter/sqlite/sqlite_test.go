package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "santa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	require.Error(t, err)
}

func TestCredentials(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCredential(ctx, "Shreya", "hash"))
	assert.ErrorIs(t, s.CreateCredential(ctx, "Shreya", "other"), domain.ErrAlreadyRegistered)

	c, err := s.GetCredential(ctx, "Shreya")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "hash", c.PasswordHash)
	assert.False(t, c.CreatedAt.IsZero())

	require.NoError(t, s.UpdateCredential(ctx, "Shreya", "new"))
	c, _ = s.GetCredential(ctx, "Shreya")
	assert.Equal(t, "new", c.PasswordHash)

	assert.ErrorIs(t, s.UpdateCredential(ctx, "Nobody", "x"), domain.ErrUnknownParticipant)

	ok, err := s.CredentialExists(ctx, "Shreya")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.CredentialExists(ctx, "Nobody")
	assert.False(t, ok)

	missing, err := s.GetCredential(ctx, "Nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWishlists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w, err := s.GetWishlist(ctx, "Govind")
	require.NoError(t, err)
	assert.Nil(t, w)

	require.NoError(t, s.SaveWishlist(ctx, "Govind", "books"))
	require.NoError(t, s.SaveWishlist(ctx, "Govind", "board games"))

	w, err = s.GetWishlist(ctx, "Govind")
	require.NoError(t, err)
	assert.Equal(t, "board games", w.Text)

	ok, _ := s.WishlistExists(ctx, "Govind")
	assert.True(t, ok)
}

func TestAssignmentsCompareAndSwap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc, err := s.GetAssignments(ctx, "2025")
	require.NoError(t, err)
	assert.Zero(t, doc.Version)
	assert.Empty(t, doc.Pairs)

	v, err := s.SaveAssignments(ctx, "2025", 0, domain.AssignmentMap{"a": "b"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	_, err = s.SaveAssignments(ctx, "2025", 0, domain.AssignmentMap{"c": "b"})
	assert.ErrorIs(t, err, domain.ErrConcurrentWriteConflict)

	v, err = s.SaveAssignments(ctx, "2025", 1, domain.AssignmentMap{"a": "b", "b": "c"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)

	_, err = s.SaveAssignments(ctx, "2025", 1, domain.AssignmentMap{"a": "b", "c": "a"})
	assert.ErrorIs(t, err, domain.ErrConcurrentWriteConflict)

	_, err = s.SaveAssignments(ctx, "2025", 2, domain.AssignmentMap{"a": "a"})
	assert.Error(t, err)

	doc, err = s.GetAssignments(ctx, "2025")
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentMap{"a": "b", "b": "c"}, doc.Pairs)
	assert.EqualValues(t, 2, doc.Version)

	other, _ := s.GetAssignments(ctx, "2026")
	assert.Empty(t, other.Pairs)
}

func TestAssignmentsSingleWinner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var (
		g    errgroup.Group
		wins = make(chan string, 8)
	)
	for _, santa := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		g.Go(func() error {
			_, err := s.SaveAssignments(ctx, "2025", 0, domain.AssignmentMap{santa: "z"})
			if err == nil {
				wins <- santa
				return nil
			}
			if err == domain.ErrConcurrentWriteConflict {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	doc, _ := s.GetAssignments(ctx, "2025")
	assert.Equal(t, domain.AssignmentMap{winners[0]: "z"}, doc.Pairs)
}

func TestClues(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b, err := s.GetClues(ctx, "Shreya")
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, s.SaveClues(ctx, domain.ClueBundle{Recipient: "Shreya", Clue1: "a", Clue2: "b", Clue3: "c"}))
	require.NoError(t, s.SaveClues(ctx, domain.ClueBundle{Recipient: "Shreya", Clue2: "y"}))

	b, err = s.GetClues(ctx, "Shreya")
	require.NoError(t, err)
	assert.Equal(t, "", b.Clue1)
	assert.Equal(t, "y", b.Clue2)
	assert.Equal(t, "", b.Clue3)

	assert.Error(t, s.SaveClues(ctx, domain.ClueBundle{}))
}

func TestSessions(t *testing.T) {
	s := openTestStore(t)
	repo := NewSessionRepo(s)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "Shreya", "live", time.Now().Add(time.Hour)))
	require.NoError(t, repo.Create(ctx, "Govind", "stale", time.Now().Add(-time.Hour)))

	sess, err := repo.GetByToken(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Shreya", sess.Participant)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	require.NoError(t, repo.DeleteExpired(ctx))
	stale, _ := repo.GetByToken(ctx, "stale")
	assert.Nil(t, stale)

	require.NoError(t, repo.Delete(ctx, "live"))
	sess, _ = repo.GetByToken(ctx, "live")
	assert.Nil(t, sess)
}
