package adapthttp

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shreya0626/secret-santa/internal/app"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	stateContextKey     contextKey = "state"
	requestIDContextKey contextKey = "request_id"
)

const sessionCookie = "session"

func stateFrom(ctx context.Context) *app.SessionState {
	s, _ := ctx.Value(stateContextKey).(*app.SessionState)
	return s
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// authMiddleware resolves the session cookie and rebuilds the dashboard state
// from the stores on every request.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		participant, err := s.creds.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				s.writeDomainError(w, r, err)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		state, err := s.workflow.Resume(r.Context(), participant)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), stateContextKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware tags each request with an id and logs its outcome.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
			"request_id", id,
		)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(r.Method, routeLabel(r.URL.Path), rec.status, elapsed)
		}
	})
}

// apiRoutes are the metric labels for API paths; anything else under /api/
// is reported as unknown.
var apiRoutes = map[string]bool{
	"/api/health": true, "/api/config": true, "/api/roster": true,
	"/api/register": true, "/api/login": true, "/api/password-reset": true,
	"/api/logout": true, "/api/sso/login": true, "/api/sso/callback": true,
	"/api/me": true, "/api/wishlist": true, "/api/draw": true,
	"/api/recipient": true, "/api/clues": true,
}

func routeLabel(p string) string {
	switch {
	case apiRoutes[p] || p == "/metrics":
		return p
	case strings.HasPrefix(p, "/api/"):
		return "unknown"
	default:
		return "static"
	}
}

// clientLimiter hands out one token bucket per client address.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
}

// maxTrackedClients bounds the limiter table; it is cleared when full.
const maxTrackedClients = 4096

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{limit: limit, burst: burst, clients: make(map[string]*rate.Limiter)}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	lim, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.clients = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// throttle rejects clients that call credential endpoints too often.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
