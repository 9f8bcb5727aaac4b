package auth

import (
	"net/http"
)

// CookieStore reads and writes the admin session cookie. Reading needs
// only the incoming request, so it works both in regular handlers and
// in the request gate, which runs before any response cookie can be set.
type CookieStore struct {
	secure bool
}

func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{
		secure: secure,
	}
}

func (cs *CookieStore) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (cs *CookieStore) Write(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   SessionCookieMaxAge,
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete is idempotent, removing an absent cookie is fine.
func (cs *CookieStore) Delete(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
