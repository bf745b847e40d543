package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionCookieName is the cookie holding the signed UI session token.
const SessionCookieName = "promptdeck_session"

const sessionTTL = 7 * 24 * time.Hour

// SessionManager issues and validates the UI session cookie. The cookie
// gates access to the chat page only; the chat endpoint re-validates its
// own credential on every call and never trusts this cookie.
type SessionManager struct {
	secret []byte
	secure bool
}

// NewSessionManager creates a session manager signing with the given
// secret. secure controls the cookie Secure attribute (off in dev so
// plain-http localhost works).
func NewSessionManager(secret string, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), secure: secure}
}

// IssueCookie mints a signed session cookie.
func (m *SessionManager) IssueCookie() (*http.Cookie, error) {
	if len(m.secret) == 0 {
		return nil, ErrMisconfigured
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign session token")
	}

	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

// Validate verifies a session token string.
func (m *SessionManager) Validate(tokenString string) error {
	if len(m.secret) == 0 {
		return ErrMisconfigured
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return errors.Wrap(err, "invalid session token")
	}
	if !token.Valid {
		return errors.New("invalid session token")
	}
	return nil
}

// Middleware redirects requests without a valid session cookie to the
// login page.
func (m *SessionManager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || m.Validate(cookie.Value) != nil {
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}
