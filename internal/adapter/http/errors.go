package adapthttp

import (
	"errors"
	"net/http"

	"github.com/shreya0626/secret-santa/internal/domain"
)

var errInternal = errors.New("internal error")

// statusFor maps workflow errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyCredential),
		errors.Is(err, domain.ErrCredentialMismatch),
		errors.Is(err, domain.ErrCredentialTooLong),
		errors.Is(err, domain.ErrEmptyWishlist):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownParticipant),
		errors.Is(err, domain.ErrWishlistNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrAlreadyDrawn),
		errors.Is(err, domain.ErrNoAvailableRecipient),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrWishlistRequired),
		errors.Is(err, domain.ErrNoRecipient):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrConcurrentWriteConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with its mapped status. Unmapped errors are
// logged and hidden behind a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
		writeError(w, status, errInternal)
		return
	}
	writeError(w, status, err)
}
