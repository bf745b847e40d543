package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestGateAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		provided string
		wantErr  error
	}{
		{name: "match", secret: "s3cret", provided: "s3cret", wantErr: nil},
		{name: "mismatch", secret: "s3cret", provided: "wrong", wantErr: ErrInvalidCredential},
		{name: "empty credential", secret: "s3cret", provided: "", wantErr: ErrInvalidCredential},
		{name: "prefix is not a match", secret: "s3cret", provided: "s3cr", wantErr: ErrInvalidCredential},
		{name: "missing server secret", secret: "", provided: "anything", wantErr: ErrMisconfigured},
		{name: "both empty still misconfigured", secret: "", provided: "", wantErr: ErrMisconfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGate(tt.secret).Authorize(tt.provided)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	m := NewSessionManager("admin-key", false)

	cookie, err := m.IssueCookie()
	require.NoError(t, err)
	require.Equal(t, SessionCookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	require.NoError(t, m.Validate(cookie.Value))
}

func TestSessionValidateRejectsTampering(t *testing.T) {
	m := NewSessionManager("admin-key", false)
	cookie, err := m.IssueCookie()
	require.NoError(t, err)

	other := NewSessionManager("different-key", false)
	require.Error(t, other.Validate(cookie.Value))
	require.Error(t, m.Validate(cookie.Value+"x"))
	require.Error(t, m.Validate("not-a-token"))
}

func TestSessionIssueMisconfigured(t *testing.T) {
	m := NewSessionManager("", false)
	_, err := m.IssueCookie()
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestSessionMiddleware(t *testing.T) {
	m := NewSessionManager("admin-key", false)
	e := echo.New()
	handler := m.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// No cookie: redirect to login.
	req := httptest.NewRequest(http.MethodGet, "/chatbot", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	// Valid cookie: pass through.
	cookie, err := m.IssueCookie()
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/chatbot", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)
}
