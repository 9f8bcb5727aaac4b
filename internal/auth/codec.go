package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecodeSession covers every malformed or tampered cookie value.
// Callers treat it the same as an absent session and never surface it
// to the client.
var ErrDecodeSession = errors.New("decode session")

func EncodeSession(s Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeSession(cookieValue string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cookieValue)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrDecodeSession, err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrDecodeSession, err)
	}

	return s, nil
}
