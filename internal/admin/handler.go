package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/pinkth3floyd/cinehub-sub001/internal/auth"
	"github.com/pinkth3floyd/cinehub-sub001/internal/instrumentation"
	"github.com/pinkth3floyd/cinehub-sub001/internal/middleware"
	"github.com/pinkth3floyd/cinehub-sub001/internal/telemetry/tracing"
	"github.com/pinkth3floyd/cinehub-sub001/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// Handler drives the admin login, logout and auth check actions. It is
// the only writer of sessions in the whole service.
type Handler struct {
	sessions  *auth.Manager
	validator *auth.Validator
	instr     *instrumentation.Instrumentation
}

func NewHandler(
	sessions *auth.Manager,
	validator *auth.Validator,
	instr *instrumentation.Instrumentation,
) *Handler {
	return &Handler{
		sessions:  sessions,
		validator: validator,
		instr:     instr,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
) {
	authSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	authSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	authSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")
	authSubrouter.
		HandleFunc("/check", handler.handleAuthCheck).
		Methods("GET", "OPTIONS").Name("auth-check")

	// rate limit the login-logout endpoints to prevent abuse
	authSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginRateLimitAllowedPerMin, handler.instr))
	authSubrouter.Use(middleware.Cors())
}

type actionResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeActionResponse(w http.ResponseWriter, statusCode int, resp actionResponse) {
	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal action response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, statusCode)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var creds auth.Credentials
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			writeActionResponse(w, http.StatusBadRequest, actionResponse{
				Success: false, Error: "login failed",
			})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			writeActionResponse(w, http.StatusBadRequest, actionResponse{
				Success: false, Error: "login failed",
			})
			return
		}
		creds = auth.Credentials{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	// schema check before the credential validator is reached
	if _, err := mail.ParseAddress(creds.Email); err != nil {
		writeActionResponse(w, http.StatusBadRequest, actionResponse{
			Success: false, Error: "Invalid email address",
		})
		return
	}
	if creds.Password == "" {
		writeActionResponse(w, http.StatusBadRequest, actionResponse{
			Success: false, Error: "Password must not be empty",
		})
		return
	}

	if err := handler.validator.Validate(creds); err != nil {
		handler.instr.CounterFailedLogins.Inc()

		if errors.Is(err, auth.ErrCredentialsNotConfigured) {
			// deployment misconfiguration, not attacker behavior
			log.Errorf("login rejected, admin credentials not set in environment")
			span.SetStatus(codes.Error, "credentials-not-configured")
			writeActionResponse(w, http.StatusInternalServerError, actionResponse{
				Success: false, Error: "Admin credentials not configured",
			})
			return
		}

		log.Tracef("failed login attempt for: %s", creds.Email)
		span.SetStatus(codes.Error, "wrong-credentials")
		writeActionResponse(w, http.StatusUnauthorized, actionResponse{
			Success: false, Error: "Invalid email or password",
		})
		return
	}

	session, err := handler.sessions.Create(w, creds.Email)
	if err != nil {
		log.Errorf("login failed, create session: %s", err)
		span.SetStatus(codes.Error, "create-session-err")
		writeActionResponse(w, http.StatusInternalServerError, actionResponse{
			Success: false, Error: "login failed",
		})
		return
	}

	handler.instr.CounterLogins.Inc()
	log.Trace("new login success")
	span.SetStatus(codes.Ok, "ok")

	writeActionResponse(w, http.StatusOK, actionResponse{
		Success: true,
		Data: map[string]any{
			"email":   session.Email,
			"isAdmin": session.IsAdmin,
		},
	})
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	// destroying an absent session is fine, logout is idempotent
	handler.sessions.Destroy(w)

	log.Trace("logout success")
	span.SetStatus(codes.Ok, "ok")
	writeActionResponse(w, http.StatusOK, actionResponse{Success: true})
}

func (handler *Handler) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "adminHandler.authCheck")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	// full context read: an expired cookie gets cleaned up right here
	session := handler.sessions.FetchValid(w, r)

	span.SetStatus(codes.Ok, "ok")
	writeActionResponse(w, http.StatusOK, actionResponse{
		Success: true,
		Data: map[string]any{
			"isAuthenticated": session != nil && session.IsAdmin,
			"session":         session,
		},
	})
}
