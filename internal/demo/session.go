package demo

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/mvc"
)

const (
	sessionCookie = "idkit_session"
	stateCookie   = "idkit_state"
)

// Session is the signed-in user.
type Session struct {
	AccountHref string
	Username    string
	Email       string
	FullName    string
	expires     time.Time
}

// SessionStore keeps sessions in memory, keyed by an opaque cookie value.
type SessionStore struct {
	TTL    time.Duration
	Secure bool

	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration, secure bool) *SessionStore {
	return &SessionStore{
		TTL:      ttl,
		Secure:   secure,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create starts a session and sets its cookie on w.
func (s *SessionStore) Create(w http.ResponseWriter, sess Session) error {
	id, err := cryptox.NewSecret()
	if err != nil {
		return err
	}
	sess.expires = s.now().Add(s.TTL)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	http.SetCookie(w, s.cookie(sessionCookie, id, int(s.TTL.Seconds())))
	return nil
}

// Get returns the live session of r.
func (s *SessionStore) Get(r *http.Request) (Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return Session{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[c.Value]
	if !ok {
		return Session{}, false
	}
	if !s.now().Before(sess.expires) {
		delete(s.sessions, c.Value)
		return Session{}, false
	}
	return sess, true
}

// Destroy ends the session of r and clears the cookie.
func (s *SessionStore) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, s.cookie(sessionCookie, "", -1))
}

// DeleteExpired drops sessions whose cookie never came back after expiry.
// The demo app sweeps it with a nonce.Janitor.
func (s *SessionStore) DeleteExpired(_ context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, sess := range s.sessions {
		if !now.Before(sess.expires) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Middleware exposes the session to views as the "session" attribute.
func (s *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.Get(r); ok {
			r = r.WithContext(mvc.WithAttribute(r.Context(), "session", sess))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *SessionStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func isSecureURL(u string) bool {
	return strings.HasPrefix(strings.ToLower(u), "https://")
}
