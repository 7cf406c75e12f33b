package handler

import (
	"net/http"
	"time"

	"research-assistant/internal/domain"
)

// SessionCookieName identifies the browser session.
const SessionCookieName = "ra_session"

// SessionMiddleware attaches a session to every request, creating one
// (and its cookie) when the client has none or it expired.
type SessionMiddleware struct {
	workspace domain.WorkspaceService
	ttl       time.Duration
	logger    domain.Logger
}

func NewSessionMiddleware(workspace domain.WorkspaceService, ttl time.Duration, logger domain.Logger) *SessionMiddleware {
	return &SessionMiddleware{workspace: workspace, ttl: ttl, logger: logger}
}

func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var session *domain.Session
		if c, err := r.Cookie(SessionCookieName); err == nil {
			session, _ = m.workspace.Session(c.Value)
		}

		if session == nil {
			session = m.workspace.NewSession()
			m.logger.Debug("Started new session", "session_id", session.ID, "path", r.URL.Path)
		}

		// Refresh the cookie so it lives as long as the server-side session.
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    session.ID,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// LoggingMiddleware logs one line per request.
type LoggingMiddleware struct {
	logger domain.Logger
}

func NewLoggingMiddleware(logger domain.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (m *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
