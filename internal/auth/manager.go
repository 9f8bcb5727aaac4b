package auth

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Manager owns the session lifecycle: issuance, validation, destruction.
type Manager struct {
	store *CookieStore
	// ability to inject the clock (for unit testing expiry)
	Now func() time.Time
}

func NewManager(store *CookieStore) *Manager {
	return &Manager{
		store: store,
		Now:   time.Now,
	}
}

// Create issues a new session for the given admin email and writes it
// as the session cookie. A previous session cookie, if any, is simply
// overwritten - at most one session exists per browser.
func (m *Manager) Create(w http.ResponseWriter, email string) (Session, error) {
	session := NewSession(email, m.Now())
	encoded, err := EncodeSession(session)
	if err != nil {
		return Session{}, err
	}
	m.store.Write(w, encoded)
	return session, nil
}

// FetchValid returns the current session, or nil if the cookie is
// absent, malformed or expired. An expired cookie is deleted on the
// spot (lazy cleanup), which is why this variant needs write access.
func (m *Manager) FetchValid(w http.ResponseWriter, r *http.Request) *Session {
	session, ok := m.fetch(r)
	if !ok {
		return nil
	}
	if !session.Valid(m.Now()) {
		m.store.Delete(w)
		return nil
	}
	return &session
}

// FetchValidReadOnly applies the exact same validity rules as
// FetchValid, but never attempts a write. Expired sessions are treated
// as absent and left for a write-capable reader to clean up.
func (m *Manager) FetchValidReadOnly(r *http.Request) *Session {
	session, ok := m.fetch(r)
	if !ok {
		return nil
	}
	if !session.Valid(m.Now()) {
		return nil
	}
	return &session
}

func (m *Manager) fetch(r *http.Request) (Session, bool) {
	cookieValue, ok := m.store.Read(r)
	if !ok {
		return Session{}, false
	}

	session, err := DecodeSession(cookieValue)
	if err != nil {
		// tampered or corrupted cookie, treated identically to no session
		log.Tracef("session cookie dropped: %s", err)
		return Session{}, false
	}

	return session, true
}

func (m *Manager) Destroy(w http.ResponseWriter) {
	m.store.Delete(w)
}

func (m *Manager) IsAuthenticated(w http.ResponseWriter, r *http.Request) bool {
	session := m.FetchValid(w, r)
	return session != nil && session.IsAdmin
}
