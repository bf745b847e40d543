// Package auth implements the shared-secret authorization gate and the
// signed session cookie that guards the UI shell.
package auth

import (
	"crypto/subtle"

	"github.com/pkg/errors"
)

var (
	// ErrMisconfigured is returned when the server-side secret is absent.
	// This is a deployment fault, not a caller fault.
	ErrMisconfigured = errors.New("auth secret is not configured")

	// ErrInvalidCredential is returned when the provided credential is
	// absent or does not match the configured secret.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Gate validates a caller-supplied credential against a single
// deployment-wide shared secret. Grants are per request; no session or
// token state is held.
type Gate struct {
	secret string
}

func NewGate(secret string) *Gate {
	return &Gate{secret: secret}
}

// Authorize checks the provided credential. Constant-time comparison
// avoids a trivial timing side channel on the secret.
func (g *Gate) Authorize(provided string) error {
	if g.secret == "" {
		return ErrMisconfigured
	}
	if provided == "" {
		return ErrInvalidCredential
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(g.secret)) != 1 {
		return ErrInvalidCredential
	}
	return nil
}
