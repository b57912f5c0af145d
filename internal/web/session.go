package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/messages"
	"github.com/Chitopro2255V/kichewebapp/internal/quiz"

	"github.com/google/uuid"
)

const sessionCookie = "session"

type contextKey string

const sessionKey contextKey = "session"

// Session is the server-side state of one browser. Handlers that touch
// the quiz hold mu for the whole request so simultaneous requests of the
// same learner cannot interleave.
type Session struct {
	mu sync.Mutex

	Token       string
	LearnerName string
	Quiz        *quiz.Session
	// Question numbers the questions shown in this session. Answer forms
	// carry it back so a resubmitted old form is not graded.
	Question int

	flashes   []messages.Message
	expiresAt time.Time
}

// Flash queues a message for the next rendered page
func (s *Session) Flash(kind messages.Kind, text string) {
	s.flashes = append(s.flashes, messages.Message{Kind: kind, Text: text})
}

// PopFlashes returns and clears queued messages
func (s *Session) PopFlashes() []messages.Message {
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

// SessionStore keeps sessions in memory keyed by cookie token
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for learner
func (s *SessionStore) Create(learner string) *Session {
	sess := &Session{
		Token:       uuid.NewString(),
		LearnerName: learner,
		expiresAt:   s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Get returns a live session and extends its lifetime
func (s *SessionStore) Get(token string) *Session {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	if now.After(sess.expiresAt) {
		delete(s.sessions, token)
		return nil
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len returns the number of stored sessions
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions that expired before now
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) setCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware attaches the session named by the request cookie, if any
func (s *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		sess := s.Get(cookie.Value)
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession returns the session attached by Middleware
func GetSession(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}
