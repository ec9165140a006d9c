package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shreya0626/secret-santa/internal/domain"
)

// Stage is the step of the workflow a session is currently in.
type Stage string

const (
	StageRegistering   Stage = "registering"
	StageLoggingIn     Stage = "logging_in"
	StagePasswordReset Stage = "password_reset"
	StageDashboard     Stage = "dashboard"
)

// SessionState is the per-session view of the workflow. It is a cache built
// from the stores at login; the stores stay the source of truth.
type SessionState struct {
	Stage             Stage  `json:"stage"`
	Participant       string `json:"participant,omitempty"`
	WishlistSubmitted bool   `json:"wishlistSubmitted"`
	Recipient         string `json:"recipient,omitempty"`
}

// NewSessionState returns a fresh session at the registration stage.
func NewSessionState() *SessionState {
	return &SessionState{Stage: StageRegistering}
}

// Drawn reports whether the session has a recipient.
func (s *SessionState) Drawn() bool {
	return s.Recipient != ""
}

// Workflow drives a SessionState through registration, login, password reset
// and the dashboard actions. A failed action never changes the stage.
type Workflow struct {
	creds     *CredentialService
	wishlists *WishlistService
	engine    *AssignmentEngine
	clues     *ClueService
	cycle     string
	log       *slog.Logger
}

// NewWorkflow wires the services used by every stage. cycle is the year key
// of the active cycle.
func NewWorkflow(creds *CredentialService, wishlists *WishlistService, engine *AssignmentEngine, clues *ClueService, cycle string) *Workflow {
	return &Workflow{
		creds:     creds,
		wishlists: wishlists,
		engine:    engine,
		clues:     clues,
		cycle:     cycle,
		log:       slog.Default(),
	}
}

// WithLogger sets the workflow logger.
func (w *Workflow) WithLogger(l *slog.Logger) *Workflow {
	if l != nil {
		w.log = l
	}
	return w
}

// Cycle returns the active cycle key.
func (w *Workflow) Cycle() string {
	return w.cycle
}

func expect(s *SessionState, stage Stage) error {
	if s.Stage != stage {
		return domain.ErrInvalidTransition
	}
	return nil
}

// --- Registering ---

// Register creates a credential and moves on to login.
func (w *Workflow) Register(ctx context.Context, s *SessionState, name, password, confirm string) error {
	if err := expect(s, StageRegistering); err != nil {
		return err
	}
	if err := w.creds.Register(ctx, name, password, confirm); err != nil {
		return err
	}
	w.log.Info("participant registered", "participant", name)
	s.Stage = StageLoggingIn
	return nil
}

// GoToLogin skips registration for participants who already have a credential.
func (w *Workflow) GoToLogin(s *SessionState) error {
	if err := expect(s, StageRegistering); err != nil {
		return err
	}
	s.Stage = StageLoggingIn
	return nil
}

// --- LoggingIn ---

// Login checks the credential and rebuilds the session from the stores.
func (w *Workflow) Login(ctx context.Context, s *SessionState, name, password string) error {
	if err := expect(s, StageLoggingIn); err != nil {
		return err
	}
	if err := w.creds.Verify(ctx, name, password); err != nil {
		return err
	}
	fresh, err := w.Resume(ctx, name)
	if err != nil {
		return err
	}
	*s = *fresh
	w.log.Info("participant logged in", "participant", name)
	return nil
}

// Resume builds a dashboard session for an already authenticated participant.
func (w *Workflow) Resume(ctx context.Context, participant string) (*SessionState, error) {
	submitted, err := w.wishlists.Submitted(ctx, participant)
	if err != nil {
		return nil, err
	}
	recipient, _, err := w.engine.RecipientOf(ctx, w.cycle, participant)
	if err != nil {
		return nil, err
	}
	return &SessionState{
		Stage:             StageDashboard,
		Participant:       participant,
		WishlistSubmitted: submitted,
		Recipient:         recipient,
	}, nil
}

// BackToRegistration returns from the login stage to registration.
func (w *Workflow) BackToRegistration(s *SessionState) error {
	if err := expect(s, StageLoggingIn); err != nil {
		return err
	}
	s.Stage = StageRegistering
	return nil
}

// RequestReset moves from login to the password reset stage.
func (w *Workflow) RequestReset(s *SessionState) error {
	if err := expect(s, StageLoggingIn); err != nil {
		return err
	}
	s.Stage = StagePasswordReset
	return nil
}

// --- PasswordReset ---

// ResetPassword replaces the password and returns to login.
func (w *Workflow) ResetPassword(ctx context.Context, s *SessionState, name, password, confirm string) error {
	if err := expect(s, StagePasswordReset); err != nil {
		return err
	}
	if err := w.creds.ResetPassword(ctx, name, password, confirm); err != nil {
		return err
	}
	w.log.Info("password reset", "participant", name)
	s.Stage = StageLoggingIn
	return nil
}

// CancelReset abandons the reset and returns to login.
func (w *Workflow) CancelReset(s *SessionState) error {
	if err := expect(s, StagePasswordReset); err != nil {
		return err
	}
	s.Stage = StageLoggingIn
	return nil
}

// --- Dashboard ---

// SaveWishlist stores the participant's wishlist.
func (w *Workflow) SaveWishlist(ctx context.Context, s *SessionState, text string) error {
	if err := expect(s, StageDashboard); err != nil {
		return err
	}
	if err := w.wishlists.Save(ctx, s.Participant, text); err != nil {
		return err
	}
	s.WishlistSubmitted = true
	return nil
}

// Wishlist returns the participant's own wishlist text, empty if none.
func (w *Workflow) Wishlist(ctx context.Context, s *SessionState) (string, error) {
	if err := expect(s, StageDashboard); err != nil {
		return "", err
	}
	wl, err := w.wishlists.Get(ctx, s.Participant)
	if errors.Is(err, domain.ErrWishlistNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return wl.Text, nil
}

// DrawRecipient draws a recipient for the participant. Without a submitted
// wishlist the draw is blocked with domain.ErrWishlistRequired and the engine
// is not consulted.
func (w *Workflow) DrawRecipient(ctx context.Context, s *SessionState) (string, error) {
	if err := expect(s, StageDashboard); err != nil {
		return "", err
	}
	if !s.WishlistSubmitted {
		return "", domain.ErrWishlistRequired
	}
	if s.Drawn() {
		return s.Recipient, domain.ErrAlreadyDrawn
	}
	recipient, err := w.engine.Draw(ctx, w.cycle, s.Participant)
	if errors.Is(err, domain.ErrAlreadyDrawn) {
		s.Recipient = recipient
		return recipient, err
	}
	if err != nil {
		return "", err
	}
	s.Recipient = recipient
	return recipient, nil
}

// RecipientWishlist returns the drawn recipient's wishlist.
func (w *Workflow) RecipientWishlist(ctx context.Context, s *SessionState) (*domain.Wishlist, error) {
	if err := expect(s, StageDashboard); err != nil {
		return nil, err
	}
	if !s.Drawn() {
		return nil, domain.ErrNoRecipient
	}
	return w.wishlists.Get(ctx, s.Recipient)
}

// SaveClues replaces the clue bundle for the drawn recipient.
func (w *Workflow) SaveClues(ctx context.Context, s *SessionState, clue1, clue2, clue3 string) error {
	if err := expect(s, StageDashboard); err != nil {
		return err
	}
	if !s.Drawn() {
		return domain.ErrNoRecipient
	}
	return w.clues.SaveClues(ctx, s.Recipient, clue1, clue2, clue3)
}

// ReadClues returns the clues left for the participant, nil if none yet.
func (w *Workflow) ReadClues(ctx context.Context, s *SessionState) (*domain.ClueBundle, error) {
	if err := expect(s, StageDashboard); err != nil {
		return nil, err
	}
	return w.clues.ReadClues(ctx, s.Participant)
}

// Logout discards the session and returns to registration.
func (w *Workflow) Logout(s *SessionState) {
	*s = *NewSessionState()
}
