package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shreya0626/secret-santa/internal/domain"

	"github.com/cenkalti/backoff/v5"
)

// DefaultDrawAttempts bounds how often a draw is re-run after losing a
// concurrent write before ErrConcurrentWriteConflict is surfaced.
const DefaultDrawAttempts = 8

// Draw outcomes reported to a DrawObserver.
const (
	OutcomeAssigned     = "assigned"
	OutcomeAlreadyDrawn = "already_drawn"
	OutcomeExhausted    = "exhausted"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

// DrawObserver receives draw telemetry.
type DrawObserver interface {
	ObserveDraw(outcome string, elapsed time.Duration)
	ObserveConflict()
}

type nopObserver struct{}

func (nopObserver) ObserveDraw(string, time.Duration) {}
func (nopObserver) ObserveConflict()                  {}

// AssignmentEngine owns the santa -> recipient map of each cycle and performs
// draws against it.
//
// A draw reads the cycle document, filters the roster down to candidates,
// picks one and writes the extended document back with a version check. A
// lost race re-runs the whole draw against the fresh document, so two santas
// can never end up with the same recipient.
type AssignmentEngine struct {
	repo   domain.AssignmentRepository
	roster *domain.Roster

	mu  sync.Mutex // guards rng
	rng Picker

	maxAttempts uint
	log         *slog.Logger
	obs         DrawObserver
}

// NewAssignmentEngine creates an engine drawing from roster with rng.
func NewAssignmentEngine(repo domain.AssignmentRepository, roster *domain.Roster, rng Picker) *AssignmentEngine {
	return &AssignmentEngine{
		repo:        repo,
		roster:      roster,
		rng:         rng,
		maxAttempts: DefaultDrawAttempts,
		log:         slog.Default(),
		obs:         nopObserver{},
	}
}

// WithMaxAttempts overrides the number of tries per draw.
func (e *AssignmentEngine) WithMaxAttempts(n uint) *AssignmentEngine {
	if n > 0 {
		e.maxAttempts = n
	}
	return e
}

// WithLogger sets the engine logger.
func (e *AssignmentEngine) WithLogger(l *slog.Logger) *AssignmentEngine {
	if l != nil {
		e.log = l
	}
	return e
}

// WithObserver sets the draw telemetry sink.
func (e *AssignmentEngine) WithObserver(o DrawObserver) *AssignmentEngine {
	if o != nil {
		e.obs = o
	}
	return e
}

// Draw assigns a recipient to santa for cycle and returns it.
//
// If santa already drew, the existing recipient is returned together with
// domain.ErrAlreadyDrawn and nothing is written. If every remaining
// participant is either santa or already taken, domain.ErrNoAvailableRecipient
// is returned and the map is left untouched.
func (e *AssignmentEngine) Draw(ctx context.Context, cycle, santa string) (string, error) {
	if !e.roster.Contains(santa) {
		return "", domain.ErrUnknownParticipant
	}
	start := time.Now()

	var existing string
	attempts := 0
	recipient, err := backoff.Retry(ctx, func() (string, error) {
		attempts++
		r, err := e.tryDraw(ctx, cycle, santa)
		switch {
		case err == nil:
			return r, nil
		case errors.Is(err, domain.ErrConcurrentWriteConflict):
			e.obs.ObserveConflict()
			e.log.Debug("draw lost a concurrent write, retrying",
				"cycle", cycle, "santa", santa, "attempt", attempts)
			return "", err
		case errors.Is(err, domain.ErrAlreadyDrawn):
			existing = r
		}
		return "", backoff.Permanent(err)
	}, backoff.WithBackOff(newDrawBackOff()), backoff.WithMaxTries(e.maxAttempts))

	elapsed := time.Since(start)
	switch {
	case err == nil:
		e.obs.ObserveDraw(OutcomeAssigned, elapsed)
		e.log.Info("recipient drawn", "cycle", cycle, "santa", santa, "attempts", attempts)
		return recipient, nil
	case errors.Is(err, domain.ErrAlreadyDrawn):
		e.obs.ObserveDraw(OutcomeAlreadyDrawn, elapsed)
		return existing, domain.ErrAlreadyDrawn
	case errors.Is(err, domain.ErrNoAvailableRecipient):
		e.obs.ObserveDraw(OutcomeExhausted, elapsed)
		e.log.Warn("no recipient left for santa", "cycle", cycle, "santa", santa)
		return "", domain.ErrNoAvailableRecipient
	case errors.Is(err, domain.ErrConcurrentWriteConflict):
		e.obs.ObserveDraw(OutcomeConflict, elapsed)
		e.log.Warn("draw gave up after repeated conflicts",
			"cycle", cycle, "santa", santa, "attempts", attempts)
		return "", domain.ErrConcurrentWriteConflict
	default:
		e.obs.ObserveDraw(OutcomeError, elapsed)
		return "", err
	}
}

func (e *AssignmentEngine) tryDraw(ctx context.Context, cycle, santa string) (string, error) {
	doc, err := e.repo.GetAssignments(ctx, cycle)
	if err != nil {
		return "", fmt.Errorf("load assignments: %w", err)
	}
	if r, ok := doc.Pairs[santa]; ok {
		return r, domain.ErrAlreadyDrawn
	}

	candidates := e.candidates(doc.Pairs, santa)
	if len(candidates) == 0 {
		return "", domain.ErrNoAvailableRecipient
	}
	recipient := candidates[e.pick(len(candidates))]

	next := doc.Pairs.Clone()
	next[santa] = recipient
	if _, err := e.repo.SaveAssignments(ctx, cycle, doc.Version, next); err != nil {
		return "", fmt.Errorf("save assignments: %w", err)
	}
	return recipient, nil
}

// candidates returns, in roster order, everyone who is neither santa nor
// already someone's recipient.
func (e *AssignmentEngine) candidates(pairs domain.AssignmentMap, santa string) []string {
	var out []string
	for _, name := range e.roster.Names() {
		if name == santa || pairs.Taken(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// pick falls back to the first candidate when the picker breaks its
// [0, n) contract.
func (e *AssignmentEngine) pick(n int) int {
	e.mu.Lock()
	i := e.rng.IntN(n)
	e.mu.Unlock()
	if i < 0 || i >= n {
		e.log.Warn("picker returned an index out of range", "index", i, "candidates", n)
		return 0
	}
	return i
}

// RecipientOf looks up the recipient of santa without side effects.
func (e *AssignmentEngine) RecipientOf(ctx context.Context, cycle, santa string) (string, bool, error) {
	doc, err := e.repo.GetAssignments(ctx, cycle)
	if err != nil {
		return "", false, err
	}
	r, ok := doc.Pairs[santa]
	return r, ok, nil
}

// IsAssigned reports whether santa has drawn in cycle.
func (e *AssignmentEngine) IsAssigned(ctx context.Context, cycle, santa string) (bool, error) {
	_, ok, err := e.RecipientOf(ctx, cycle, santa)
	return ok, err
}

// Assignments returns a copy of the cycle's map.
func (e *AssignmentEngine) Assignments(ctx context.Context, cycle string) (domain.AssignmentMap, error) {
	doc, err := e.repo.GetAssignments(ctx, cycle)
	if err != nil {
		return nil, err
	}
	return doc.Pairs.Clone(), nil
}

// Pending lists, in roster order, the participants who have not drawn yet.
func (e *AssignmentEngine) Pending(ctx context.Context, cycle string) ([]string, error) {
	doc, err := e.repo.GetAssignments(ctx, cycle)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range e.roster.Names() {
		if _, ok := doc.Pairs[name]; !ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func newDrawBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.Reset()
	return b
}
