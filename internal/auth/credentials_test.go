package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator(StaticCredentialsProvider{
		Email:    "a@b.com",
		Password: "correct",
	})
	require.NotNil(t, validator)

	assert.NoError(t, validator.Validate(Credentials{Email: "a@b.com", Password: "correct"}))

	cases := []struct {
		name  string
		creds Credentials
	}{
		{name: "wrong password", creds: Credentials{Email: "a@b.com", Password: "wrong"}},
		{name: "wrong email", creds: Credentials{Email: "x@y.com", Password: "correct"}},
		{name: "both wrong", creds: Credentials{Email: "x@y.com", Password: "wrong"}},
		{name: "empty", creds: Credentials{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.creds)
			// same generic error regardless of which field mismatched
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestValidator_Validate_NotConfigured(t *testing.T) {
	for _, provider := range []CredentialsProvider{
		StaticCredentialsProvider{},
		StaticCredentialsProvider{Email: "a@b.com"},
		StaticCredentialsProvider{Password: "secret"},
	} {
		validator := NewValidator(provider)
		err := validator.Validate(Credentials{Email: "a@b.com", Password: "secret"})
		assert.ErrorIs(t, err, ErrCredentialsNotConfigured)
	}
}

func TestEnvCredentialsProvider(t *testing.T) {
	t.Setenv(AdminEmailEnvVar, "admin@cinehub.dev")
	t.Setenv(AdminPasswordEnvVar, "hunter2")

	email, password := EnvCredentialsProvider{}.AdminCredentials()
	assert.Equal(t, "admin@cinehub.dev", email)
	assert.Equal(t, "hunter2", password)
}
