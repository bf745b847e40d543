package api

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hrygo/promptdeck/server/auth"
)

// Brute-force throttle: one attempt per 2s sustained, bursts of 5.
const (
	loginRateInterval = 2 // seconds per refill
	loginRateBurst    = 5
	loginLimiterCap   = 10000
)

type loginLimiter struct {
	mu    sync.Mutex
	perIP map[string]*rate.Limiter
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{perIP: make(map[string]*rate.Limiter)}
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Crude memory bound: drop all buckets when the map grows too big.
	if len(l.perIP) > loginLimiterCap {
		l.perIP = make(map[string]*rate.Limiter)
	}
	limiter, ok := l.perIP[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(1.0/loginRateInterval), loginRateBurst)
		l.perIP[ip] = limiter
	}
	return limiter.Allow()
}

type loginRequest struct {
	Key string `json:"key"`
}

// handleLogin checks the admin key and sets the session cookie that
// gates the chat page.
func (s *APIService) handleLogin(c echo.Context) error {
	var body loginRequest
	if err := c.Bind(&body); err != nil {
		return errJSON(c, http.StatusBadRequest, errMalformedRequest)
	}

	if !s.loginLimiter.allow(c.RealIP()) {
		s.Metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return errJSON(c, http.StatusTooManyRequests, "too many attempts")
	}

	if err := s.adminGate.Authorize(body.Key); err != nil {
		if errors.Is(err, auth.ErrMisconfigured) {
			s.Metrics.LoginAttempts.WithLabelValues("misconfigured").Inc()
			return errJSON(c, http.StatusInternalServerError, errMisconfigured)
		}
		s.Metrics.LoginAttempts.WithLabelValues("denied").Inc()
		return errJSON(c, http.StatusUnauthorized, errUnauthorized)
	}

	cookie, err := s.Sessions.IssueCookie()
	if err != nil {
		s.Metrics.LoginAttempts.WithLabelValues("misconfigured").Inc()
		return errJSON(c, http.StatusInternalServerError, errMisconfigured)
	}
	c.SetCookie(cookie)

	s.Metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
