package auth

import (
	"time"
)

const (
	// SessionCookieName is the single cookie key holding the admin session.
	// The cookie is the session record, there is no server side session table.
	SessionCookieName = "admin_session"

	// SessionDuration is fixed at issuance, no sliding expiration.
	SessionDuration = 24 * time.Hour

	SessionCookieMaxAge = int(SessionDuration / time.Second)
)

// Session is the admin session record carried in the cookie.
// ExpiresAt is in milliseconds since epoch.
type Session struct {
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	ExpiresAt int64  `json:"expiresAt"`
}

func NewSession(email string, now time.Time) Session {
	return Session{
		Email:     email,
		IsAdmin:   true,
		ExpiresAt: now.Add(SessionDuration).UnixMilli(),
	}
}

// Valid is the one place deciding session expiry. Every reader,
// write-capable or not, must go through it so that the same wall-clock
// instant yields the same verdict on all paths.
func (s Session) Valid(now time.Time) bool {
	return s.ExpiresAt > now.UnixMilli()
}
