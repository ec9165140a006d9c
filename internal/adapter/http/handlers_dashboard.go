package adapthttp

import (
	"errors"
	"net/http"

	"github.com/shreya0626/secret-santa/internal/domain"
)

type wishlistRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

type cluesRequest struct {
	Clue1 string `json:"clue1" validate:"max=500"`
	Clue2 string `json:"clue2" validate:"max=500"`
	Clue3 string `json:"clue3" validate:"max=500"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, stateFrom(r.Context()))
}

func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		text, err := s.workflow.Wishlist(r.Context(), st)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"participant": st.Participant,
			"text":        text,
			"submitted":   st.WishlistSubmitted,
		})
	case http.MethodPut:
		var req wishlistRequest
		if err := s.parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.workflow.SaveWishlist(r.Context(), st, req.Text); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	st := stateFrom(r.Context())
	recipient, err := s.workflow.DrawRecipient(r.Context(), st)
	if errors.Is(err, domain.ErrAlreadyDrawn) {
		writeJSON(w, http.StatusOK, map[string]any{"recipient": recipient, "alreadyDrawn": true})
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipient": recipient, "alreadyDrawn": false})
}

func (s *Server) handleRecipient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	st := stateFrom(r.Context())
	wl, err := s.workflow.RecipientWishlist(r.Context(), st)
	switch {
	case errors.Is(err, domain.ErrWishlistNotFound):
		writeJSON(w, http.StatusOK, map[string]any{"recipient": st.Recipient, "wishlist": ""})
	case err != nil:
		s.writeDomainError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"recipient": st.Recipient, "wishlist": wl.Text})
	}
}

func (s *Server) handleClues(w http.ResponseWriter, r *http.Request) {
	st := stateFrom(r.Context())
	switch r.Method {
	case http.MethodGet:
		b, err := s.workflow.ReadClues(r.Context(), st)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"clues": b})
	case http.MethodPut:
		var req cluesRequest
		if err := s.parseJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.workflow.SaveClues(r.Context(), st, req.Clue1, req.Clue2, req.Clue3); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"recipient": st.Recipient})
	default:
		methodNotAllowed(w)
	}
}
