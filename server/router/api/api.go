// Package api hosts the JSON/SSE handlers: chat completion streaming,
// the system prompt endpoints, login and health.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/promptdeck/ai/llm"
	"github.com/hrygo/promptdeck/internal/profile"
	"github.com/hrygo/promptdeck/plugin/imageprep"
	"github.com/hrygo/promptdeck/server/auth"
	"github.com/hrygo/promptdeck/server/metrics"
	"github.com/hrygo/promptdeck/store"
)

const maxConcurrentStreams = 32

// PromptStore is the slice of the store the handlers depend on.
type PromptStore interface {
	GetSystemPrompt(ctx context.Context) string
	UpsertSystemPrompt(ctx context.Context, prompt string) (*store.SystemPromptRecord, error)
	Ping(ctx context.Context) error
}

// APIService wires the HTTP handlers to their collaborators.
type APIService struct {
	Profile  *profile.Profile
	Store    PromptStore
	LLM      llm.Service
	Metrics  *metrics.Metrics
	Sessions *auth.SessionManager

	chatGate     *auth.Gate
	adminGate    *auth.Gate
	images       *imageprep.Preparer
	streamSem    *semaphore.Weighted
	loginLimiter *loginLimiter
}

func NewAPIService(p *profile.Profile, store PromptStore, llmService llm.Service, m *metrics.Metrics) *APIService {
	return &APIService{
		Profile:      p,
		Store:        store,
		LLM:          llmService,
		Metrics:      m,
		Sessions:     auth.NewSessionManager(p.AdminKey, !p.IsDev()),
		chatGate:     auth.NewGate(p.ChatSecret),
		adminGate:    auth.NewGate(p.AdminKey),
		images:       imageprep.New(3, imageprep.DefaultMaxDimension),
		streamSem:    semaphore.NewWeighted(maxConcurrentStreams),
		loginLimiter: newLoginLimiter(),
	}
}

// RegisterRoutes mounts the API handlers on the given group.
func (s *APIService) RegisterRoutes(g *echo.Group) {
	g.POST("/chat", s.handleChat)
	g.GET("/prompt", s.handleGetPrompt)
	g.POST("/prompt", s.handleSetPrompt)
	g.PUT("/prompt", s.handleSetPrompt)
	g.POST("/login", s.handleLogin)
}

// HandleHealthz reports liveness plus a store round trip.
func (s *APIService) HandleHealthz(c echo.Context) error {
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
