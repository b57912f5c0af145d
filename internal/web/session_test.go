package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/messages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Expiry(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour)
	store.now = func() time.Time { return now }

	sess := store.Create("Ixchel")
	require.NotEmpty(t, sess.Token)

	now = now.Add(50 * time.Minute)
	assert.Same(t, sess, store.Get(sess.Token))

	// Get slid the expiry forward
	now = now.Add(50 * time.Minute)
	assert.Same(t, sess, store.Get(sess.Token))

	now = now.Add(2 * time.Hour)
	assert.Nil(t, store.Get(sess.Token))
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_Sweep(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour)
	store.now = func() time.Time { return now }

	store.Create("Ixchel")
	now = now.Add(30 * time.Minute)
	fresh := store.Create("Balam")

	removed := store.Sweep(now.Add(45 * time.Minute))

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
	assert.NotNil(t, store.Get(fresh.Token))
}

func TestSession_Flashes(t *testing.T) {
	sess := &Session{}
	sess.Flash(messages.KindSuccess, "uno")
	sess.Flash(messages.KindError, "dos")

	flashes := sess.PopFlashes()
	assert.Equal(t, []messages.Message{
		{Kind: messages.KindSuccess, Text: "uno"},
		{Kind: messages.KindError, Text: "dos"},
	}, flashes)
	assert.Empty(t, sess.PopFlashes())
}

func TestSessionStore_Middleware(t *testing.T) {
	store := NewSessionStore(time.Hour)
	sess := store.Create("Ixchel")

	var seen *Session
	h := store.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sess.Token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Same(t, sess, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "unknown"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)
}
