package adapthttp

import (
	"log/slog"
	"net/http"

	"github.com/shreya0626/secret-santa/internal/app"
	"github.com/shreya0626/secret-santa/internal/domain"
	"github.com/shreya0626/secret-santa/internal/telemetry"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// Default throttle for credential endpoints, per client address.
const (
	DefaultAuthRate  = rate.Limit(1)
	DefaultAuthBurst = 5
)

// Server is the driving HTTP adapter that routes requests to the workflow.
type Server struct {
	creds    *app.CredentialService
	workflow *app.Workflow
	roster   *domain.Roster
	webDir   string

	oidcConfig oidcConfig
	limiter    *clientLimiter
	validate   *validator.Validate
	log        *slog.Logger

	metrics        *telemetry.Metrics
	metricsHandler http.Handler
}

// New creates a Server wired to the given application services.
func New(creds *app.CredentialService, wf *app.Workflow, roster *domain.Roster, webDir string) *Server {
	return &Server{
		creds:    creds,
		workflow: wf,
		roster:   roster,
		webDir:   webDir,
		limiter:  newClientLimiter(DefaultAuthRate, DefaultAuthBurst),
		validate: validator.New(),
		log:      slog.Default(),
	}
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	if l != nil {
		s.log = l
	}
	return s
}

// WithMetrics records request metrics in m and serves h on /metrics.
func (s *Server) WithMetrics(m *telemetry.Metrics, h http.Handler) *Server {
	s.metrics = m
	s.metricsHandler = h
	return s
}

// WithAuthRateLimit overrides the throttle on register, login and reset.
func (s *Server) WithAuthRateLimit(limit rate.Limit, burst int) *Server {
	s.limiter = newClientLimiter(limit, burst)
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/roster", s.handleRoster)

	api.Handle("/register", s.throttle(http.HandlerFunc(s.handleRegister)))
	api.Handle("/login", s.throttle(http.HandlerFunc(s.handleLogin)))
	api.Handle("/password-reset", s.throttle(http.HandlerFunc(s.handlePasswordReset)))
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/sso/login", s.handleSSOLogin)
	api.HandleFunc("/sso/callback", s.handleSSOCallback)

	api.Handle("/me", s.authMiddleware(http.HandlerFunc(s.handleMe)))
	api.Handle("/wishlist", s.authMiddleware(http.HandlerFunc(s.handleWishlist)))
	api.Handle("/draw", s.authMiddleware(http.HandlerFunc(s.handleDraw)))
	api.Handle("/recipient", s.authMiddleware(http.HandlerFunc(s.handleRecipient)))
	api.Handle("/clues", s.authMiddleware(http.HandlerFunc(s.handleClues)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metricsHandler != nil {
		root.Handle("/metrics", s.metricsHandler)
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
