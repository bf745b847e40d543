// Package server assembles the echo HTTP server: middleware, the API
// routes, metrics and the embedded frontend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/promptdeck/ai/llm"
	"github.com/hrygo/promptdeck/internal/profile"
	"github.com/hrygo/promptdeck/server/metrics"
	"github.com/hrygo/promptdeck/server/router/api"
	"github.com/hrygo/promptdeck/server/router/frontend"
	"github.com/hrygo/promptdeck/store"
)

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store
	LLM     llm.Service
	Metrics *metrics.Metrics
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, llmService llm.Service) (*Server, error) {
	e := echo.New()
	e.Debug = profile.IsDev()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		e:       e,
		Profile: profile,
		Store:   store,
		LLM:     llmService,
		Metrics: metrics.New(),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowCredentials: false,
	}))
	e.Use(requestLogger())

	apiService := api.NewAPIService(profile, store, llmService, s.Metrics)
	apiService.RegisterRoutes(e.Group("/api"))
	e.GET("/healthz", apiService.HandleHealthz)
	e.GET("/metrics", s.Metrics.Handler())

	frontendService := frontend.NewFrontendService(profile, apiService.Sessions)
	frontendService.Serve(ctx, e)

	return s, nil
}

// requestLogger tags each request with a short id and logs it on
// completion. Streaming responses log their full duration.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := shortuuid.New()
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger := slog.With(
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			)
			if err != nil {
				logger.Error("request failed", "error", err)
			} else if c.Response().Status >= 500 {
				logger.Warn("request completed with server error")
			} else {
				logger.Info("request completed")
			}
			return nil
		}
	}
}

// Start launches the listener in the background; Shutdown stops it.
func (s *Server) Start(_ context.Context) error {
	go func() {
		addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server shut down")
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}
