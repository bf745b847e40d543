package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/promptdeck/internal/profile"
	"github.com/hrygo/promptdeck/server/auth"
	"github.com/hrygo/promptdeck/server/metrics"
)

func doLogin(t *testing.T, s *APIService, body, ip string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if ip != "" {
		req.Header.Set(echo.HeaderXRealIP, ip)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, s.handleLogin(echo.New().NewContext(req, rec)))
	return rec
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	s := newTestService(testProfile(), &fakeLLM{})
	rec := doLogin(t, s, `{"key": "admin-key"}`, "10.0.0.1")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, auth.SessionCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.NoError(t, s.Sessions.Validate(cookies[0].Value))
}

func TestLoginWrongKey(t *testing.T) {
	s := newTestService(testProfile(), &fakeLLM{})
	rec := doLogin(t, s, `{"key": "wrong"}`, "10.0.0.2")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Result().Cookies())
}

func TestLoginMissingAdminKey(t *testing.T) {
	p := &profile.Profile{Mode: "dev"}
	s := NewAPIService(p, &fakePromptStore{}, &fakeLLM{}, metrics.New())
	rec := doLogin(t, s, `{"key": "anything"}`, "10.0.0.3")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), errMisconfigured)
}

func TestLoginRateLimitPerIP(t *testing.T) {
	s := newTestService(testProfile(), &fakeLLM{})

	var throttled bool
	for i := 0; i < loginRateBurst+2; i++ {
		rec := doLogin(t, s, `{"key": "wrong"}`, "10.0.0.4")
		if rec.Code == http.StatusTooManyRequests {
			throttled = true
		}
	}
	require.True(t, throttled, "burst exhaustion throttles")

	// A different client is unaffected.
	rec := doLogin(t, s, `{"key": "admin-key"}`, "10.0.0.5")
	require.Equal(t, http.StatusOK, rec.Code)
}
