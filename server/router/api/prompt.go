package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

type promptResponse struct {
	Prompt string `json:"prompt"`
}

type promptSaveResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt"`
}

// handleGetPrompt returns the persisted system prompt. The store
// substitutes the default instruction on miss or failure, so this
// endpoint always answers 200.
func (s *APIService) handleGetPrompt(c echo.Context) error {
	prompt := s.Store.GetSystemPrompt(c.Request().Context())
	s.Metrics.PromptOps.WithLabelValues("get", "ok").Inc()
	return c.JSON(http.StatusOK, promptResponse{Prompt: prompt})
}

// handleSetPrompt upserts the system prompt wholesale. Last write wins.
func (s *APIService) handleSetPrompt(c echo.Context) error {
	var body struct {
		Prompt json.RawMessage `json:"prompt"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return errJSON(c, http.StatusBadRequest, "prompt must be a string")
	}
	var prompt string
	if len(body.Prompt) == 0 || json.Unmarshal(body.Prompt, &prompt) != nil {
		return errJSON(c, http.StatusBadRequest, "prompt must be a string")
	}

	if _, err := s.Store.UpsertSystemPrompt(c.Request().Context(), prompt); err != nil {
		s.Metrics.PromptOps.WithLabelValues("set", "error").Inc()
		return errJSON(c, http.StatusInternalServerError, errSavePrompt)
	}
	s.Metrics.PromptOps.WithLabelValues("set", "ok").Inc()
	return c.JSON(http.StatusOK, promptSaveResponse{Success: true, Prompt: prompt})
}
