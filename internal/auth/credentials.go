package auth

import (
	"crypto/subtle"
	"errors"
	"os"
)

const (
	AdminEmailEnvVar    = "CINEHUB_ADMIN_EMAIL"
	AdminPasswordEnvVar = "CINEHUB_ADMIN_PASSWORD"
)

var (
	// ErrCredentialsNotConfigured means the deployment is missing the
	// admin secrets. A config problem, not an attacker, log it as such.
	ErrCredentialsNotConfigured = errors.New("admin credentials not configured")

	// ErrInvalidCredentials is deliberately generic, it never says
	// which of the two fields was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CredentialsProvider supplies the configured admin secrets. Injected
// so tests can use fixed values without touching process environment.
type CredentialsProvider interface {
	AdminCredentials() (email, password string)
}

// EnvCredentialsProvider reads the secrets from the environment at
// call time.
type EnvCredentialsProvider struct{}

func (EnvCredentialsProvider) AdminCredentials() (string, string) {
	return os.Getenv(AdminEmailEnvVar), os.Getenv(AdminPasswordEnvVar)
}

// StaticCredentialsProvider holds fixed secrets, used in tests.
type StaticCredentialsProvider struct {
	Email    string
	Password string
}

func (p StaticCredentialsProvider) AdminCredentials() (string, string) {
	return p.Email, p.Password
}

type Validator struct {
	provider CredentialsProvider
}

func NewValidator(provider CredentialsProvider) *Validator {
	return &Validator{provider: provider}
}

func (v *Validator) Validate(creds Credentials) error {
	adminEmail, adminPassword := v.provider.AdminCredentials()
	if adminEmail == "" || adminPassword == "" {
		return ErrCredentialsNotConfigured
	}

	// both comparisons always run, constant time
	emailOK := subtle.ConstantTimeCompare([]byte(creds.Email), []byte(adminEmail))
	passwordOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(adminPassword))
	if emailOK&passwordOK != 1 {
		return ErrInvalidCredentials
	}

	return nil
}
