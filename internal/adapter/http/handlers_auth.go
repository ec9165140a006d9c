// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/shreya0626/secret-santa/internal/app"
	"github.com/shreya0626/secret-santa/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

type oidcConfig struct {
	Enabled      bool
	OAuth2Config oauth2.Config
	Provider     *oidc.Provider
}

// WithOIDC enables single sign-on against issuer. Only identities whose name
// matches a roster participant are let in.
func (s *Server) WithOIDC(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) error {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return fmt.Errorf("oidc provider %s: %w", issuer, err)
	}
	s.oidcConfig = oidcConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}
	return nil
}

// max= counts runes; the byte limit bcrypt imposes is enforced by the
// credential service.
type credentialsRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"max=72"`
	Confirm  string `json:"confirm" validate:"max=72"`
}

type loginRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"max=72"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(s.creds.SessionTTL().Seconds()),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := s.parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	st := app.NewSessionState()
	if err := s.workflow.Register(r.Context(), st, req.Name, req.Password, req.Confirm); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req loginRequest
	if err := s.parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	st := app.NewSessionState()
	if err := s.workflow.GoToLogin(st); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.workflow.Login(r.Context(), st, req.Name, req.Password); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	token, err := s.creds.StartSession(r.Context(), st.Participant)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := s.parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	st := app.NewSessionState()
	if err := s.workflow.GoToLogin(st); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.workflow.RequestReset(st); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.workflow.ResetPassword(r.Context(), st, req.Name, req.Password, req.Confirm); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	st := app.NewSessionState()
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if participant, err := s.creds.ValidateSession(r.Context(), cookie.Value); err == nil {
			if resumed, err := s.workflow.Resume(r.Context(), participant); err == nil {
				st = resumed
			}
		}
		_ = s.creds.EndSession(r.Context(), cookie.Value)
	}
	s.workflow.Logout(st)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.oidcConfig.Enabled,
		"cycle":       s.workflow.Cycle(),
	})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": s.roster.Names()})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax so the provider redirect carries it back
		MaxAge:   300,
	})
	http.Redirect(w, r, s.oidcConfig.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.oidcConfig.Enabled {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}

	state, err := r.Cookie("oauth_state")
	if err != nil || !app.ConstantTimeCompare(r.URL.Query().Get("state"), state.Value) {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", MaxAge: -1, Path: "/"})

	token, err := s.oidcConfig.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, "failed to exchange token", http.StatusInternalServerError)
		return
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "no id_token", http.StatusInternalServerError)
		return
	}
	idToken, err := s.oidcConfig.Provider.Verifier(&oidc.Config{ClientID: s.oidcConfig.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		http.Error(w, "failed to verify token", http.StatusInternalServerError)
		return
	}

	var claims ssoClaims
	if err = idToken.Claims(&claims); err != nil {
		http.Error(w, "failed to parse claims", http.StatusInternalServerError)
		return
	}

	name, ok := claims.participant(s.roster)
	if !ok {
		s.log.Warn("sso identity not on roster", "sub", claims.Sub)
		http.Error(w, "not a participant", http.StatusForbidden)
		return
	}
	sessionToken, err := s.creds.LoginWithIdentity(r.Context(), name)
	if errors.Is(err, domain.ErrUnknownParticipant) {
		http.Error(w, "not a participant", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	s.setSessionCookie(w, sessionToken)
	http.Redirect(w, r, "/", http.StatusFound)
}

type ssoClaims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
}

// participant returns the first claim that names a roster participant.
func (c ssoClaims) participant(roster *domain.Roster) (string, bool) {
	for _, candidate := range []string{c.Name, c.PreferredUsername, c.Email, c.Sub} {
		if candidate != "" && roster.Contains(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
