package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pinkth3floyd/cinehub-sub001/internal/auth"
	"github.com/pinkth3floyd/cinehub-sub001/internal/instrumentation"
	"github.com/pinkth3floyd/cinehub-sub001/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const LoginPagePath = "/login"

// SessionReader is the read-only session surface the gate runs on. It
// executes before any response is produced, so it must never try to
// write a cookie.
type SessionReader interface {
	FetchValidReadOnly(r *http.Request) *auth.Session
}

// AdminGate decides, once per request, whether the request may reach
// an admin page. Stateless: every request is re-evaluated from scratch.
type AdminGate struct {
	sessionReader   SessionReader
	instr           *instrumentation.Instrumentation
	protectedPrefix string
	// framework infrastructure routes, never gated and never looked up
	skippedPrefixes []string
	// always reachable, otherwise the login page would redirect to itself
	exemptPaths map[string]bool
}

func NewAdminGate(
	sessionReader SessionReader,
	instr *instrumentation.Instrumentation,
) *AdminGate {
	return &AdminGate{
		sessionReader:   sessionReader,
		instr:           instr,
		protectedPrefix: "/admin",
		skippedPrefixes: []string{
			"/api/",
			"/static/",
			"/images/",
			"/favicon.ico",
		},
		exemptPaths: map[string]bool{
			LoginPagePath: true,

			// login-logout actions:
			"/a/login":  true,
			"/a/logout": true,
			"/a/check":  true,
		},
	}
}

func (g *AdminGate) pathIsSkipped(path string) bool {
	for _, prefix := range g.skippedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *AdminGate) Gate() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.adminGate")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			path := r.URL.Path
			if g.pathIsSkipped(path) || g.exemptPaths[path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// public catalog pages pass without a session lookup
			if !strings.HasPrefix(path, g.protectedPrefix) {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			// any read or decode failure degrades to "not logged in",
			// never to a 5xx - the redirect path stays available
			if session := g.sessionReader.FetchValidReadOnly(r); session != nil && session.IsAdmin {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			log.Tracef("[no valid session] [admin gate] redirect to login => %s", path)
			g.instr.CounterGateRedirects.Inc()
			span.SetStatus(codes.Error, "not-logged")

			loginURL := LoginPagePath + "?redirect=" + url.QueryEscape(path)
			http.Redirect(w, r, loginURL, http.StatusSeeOther)
		})
	}
}
