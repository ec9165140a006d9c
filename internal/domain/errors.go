package domain

import "errors"

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// Credential and identity errors.
var (
	// ErrEmptyCredential indicates that a password or its confirmation was blank.
	ErrEmptyCredential = errors.New("password cannot be empty")
	// ErrCredentialMismatch indicates that a password and its confirmation differ.
	ErrCredentialMismatch = errors.New("passwords do not match")
	// ErrCredentialTooLong indicates a password longer than MaxPasswordBytes.
	ErrCredentialTooLong = errors.New("password is too long")
	// ErrAlreadyRegistered indicates that the participant already has a credential.
	ErrAlreadyRegistered = errors.New("participant is already registered")
	// ErrInvalidCredential indicates that the name or password was incorrect.
	ErrInvalidCredential = errors.New("invalid name or password")
	// ErrUnknownParticipant indicates a name outside the roster, or one without a credential.
	ErrUnknownParticipant = errors.New("unknown participant")
)

// Wishlist errors.
var (
	ErrEmptyWishlist    = errors.New("wishlist cannot be empty")
	ErrWishlistNotFound = errors.New("wishlist not submitted")
)

// Assignment errors.
var (
	// ErrNoAvailableRecipient is terminal for the draw: no one is left who is
	// not the santa and not already taken. An administrator has to step in.
	ErrNoAvailableRecipient = errors.New("no valid recipients available, please contact an administrator")
	// ErrAlreadyDrawn indicates the santa already has a recipient for the cycle.
	ErrAlreadyDrawn = errors.New("recipient already drawn for this cycle")
	// ErrConcurrentWriteConflict is returned by a store when the assignment
	// document changed since it was read.
	ErrConcurrentWriteConflict = errors.New("assignments were modified concurrently")
)

// Workflow errors.
var (
	ErrInvalidTransition = errors.New("action not allowed in the current stage")
	ErrWishlistRequired  = errors.New("submit a wishlist before drawing")
	ErrNoRecipient       = errors.New("no recipient drawn yet")
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)
