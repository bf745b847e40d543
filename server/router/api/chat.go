package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/promptdeck/ai/llm"
	"github.com/hrygo/promptdeck/chat"
	"github.com/hrygo/promptdeck/internal/util"
	"github.com/hrygo/promptdeck/server/auth"
	"github.com/hrygo/promptdeck/server/metrics"
	"github.com/hrygo/promptdeck/store"
)

// Models the gateway will forward upstream. Anything else silently
// falls back to the configured default; an unknown model is not an
// error condition.
var allowedModels = map[string]bool{
	"grok-4-fast-reasoning":     true,
	"grok-4-fast-non-reasoning": true,
	"grok-3-mini":               true,
	"grok-3":                    true,
}

var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// maxAttachmentBytes caps the decoded size of one inline attachment.
const maxAttachmentBytes = 10 << 20

// Optional fields stay raw so a mistyped value (e.g. numeric model)
// degrades per field instead of failing the whole decode.
type chatRequest struct {
	Messages  json.RawMessage `json:"messages"`
	System    json.RawMessage `json:"system"`
	Model     json.RawMessage `json:"model"`
	SecretKey json.RawMessage `json:"secretKey"`
}

// handleChat validates a chat request and proxies the completion
// stream back as server-sent events. Validation order is fixed:
// body shape, messages shape, emptiness, credential, then the
// soft model/system fallbacks.
func (s *APIService) handleChat(c echo.Context) error {
	ctx := c.Request().Context()

	var req chatRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return errJSON(c, http.StatusBadRequest, errMalformedRequest)
	}

	messages, ok := decodeMessages(req.Messages)
	if !ok {
		s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeInvalidMessages).Inc()
		return errJSON(c, http.StatusBadRequest, errInvalidMessages)
	}
	if len(messages) == 0 && !s.Profile.ChatAllowEmpty {
		s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeEmptyMessages).Inc()
		return errJSON(c, http.StatusBadRequest, errEmptyMessages)
	}

	if s.Profile.ChatRequireAuth {
		if err := s.chatGate.Authorize(chatCredential(c, req.SecretKey)); err != nil {
			if errors.Is(err, auth.ErrMisconfigured) {
				s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeMisconfigured).Inc()
				return errJSON(c, http.StatusInternalServerError, errMisconfigured)
			}
			s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeUnauthorized).Inc()
			return errJSON(c, http.StatusUnauthorized, errUnauthorized)
		}
	}

	if s.Profile.XAIAPIKey == "" {
		s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeMisconfigured).Inc()
		return errJSON(c, http.StatusInternalServerError, errMisconfigured)
	}

	model := decodeString(req.Model)
	if !allowedModels[model] {
		model = s.Profile.DefaultModel
	}

	system := decodeString(req.System)
	if system == "" {
		system = store.DefaultSystemPrompt
	}

	llmMessages, err := s.prepareMessages(ctx, system, messages)
	if err != nil {
		s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeInvalidMessages).Inc()
		return errJSON(c, http.StatusBadRequest, errBadAttachment)
	}

	if err := s.streamSem.Acquire(ctx, 1); err != nil {
		return nil // client went away while queued
	}
	defer s.streamSem.Release(1)

	started := time.Now()
	contentCh, statsCh, errCh := s.LLM.ChatStream(ctx, model, llmMessages)
	return s.streamSSE(c, started, contentCh, statsCh, errCh)
}

// decodeMessages parses the messages field. Returns ok=false when the
// field is absent, null, or not an array of messages.
func decodeMessages(raw json.RawMessage) ([]chat.Message, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var messages []chat.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// decodeString parses an optional string field; non-strings read as "".
func decodeString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// chatCredential extracts the caller credential: bearer header first,
// body secretKey as fallback.
func chatCredential(c echo.Context, secretKey json.RawMessage) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
		return token
	}
	return decodeString(secretKey)
}

// prepareMessages converts the transcript to provider messages,
// validating and downscaling image attachments on the way.
func (s *APIService) prepareMessages(ctx context.Context, system string, messages []chat.Message) ([]llm.Message, error) {
	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, llm.SystemPrompt(system))

	for _, m := range messages {
		lm := llm.Message{Role: string(m.Role), Text: m.Text()}
		for _, p := range m.Parts {
			if p.Type != chat.PartFile {
				continue
			}
			if err := validateAttachment(p); err != nil {
				return nil, err
			}
			url, err := s.images.Prepare(ctx, p.MediaType, p.URL)
			if err != nil {
				return nil, err
			}
			lm.Images = append(lm.Images, url)
		}
		out = append(out, lm)
	}
	return out, nil
}

func validateAttachment(p chat.Part) error {
	if !allowedImageTypes[p.MediaType] {
		return errors.Errorf("unsupported attachment media type %q", p.MediaType)
	}
	if _, payload, found := strings.Cut(p.URL, ","); found && strings.HasPrefix(p.URL, "data:") {
		if len(payload)/4*3 > maxAttachmentBytes {
			return errors.New("attachment exceeds size limit")
		}
	}
	return nil
}

type streamEvent struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Delta     string `json:"delta,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}

// streamSSE relays the completion channels as an SSE stream. The
// response header is held back until the first upstream event so a
// provider failure before any output is still a clean 500; after the
// first byte, failures become an in-stream error event instead.
func (s *APIService) streamSSE(c echo.Context, started time.Time, contentCh <-chan string, statsCh <-chan *llm.CallStats, errCh <-chan error) error {
	ctx := c.Request().Context()

	var first string
	var haveFirst bool
	waitContent, waitErr := contentCh, errCh
wait:
	for waitContent != nil || waitErr != nil {
		// Prefer content: output the provider already produced should
		// win over an error that raced in behind it.
		select {
		case delta, ok := <-waitContent:
			if !ok {
				waitContent = nil
				continue
			}
			first, haveFirst = delta, true
			break wait
		default:
		}

		select {
		case delta, ok := <-waitContent:
			if !ok {
				waitContent = nil
				continue
			}
			first, haveFirst = delta, true
			break wait
		case err, ok := <-waitErr:
			if !ok {
				waitErr = nil
				continue
			}
			if err != nil {
				s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
				return errJSON(c, http.StatusInternalServerError, "completion provider error: "+err.Error())
			}
		case <-ctx.Done():
			return nil
		}
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writeEvent := func(ev streamEvent) {
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		w.Flush()
	}
	writeDone := func() {
		fmt.Fprint(w, "data: [DONE]\n\n")
		w.Flush()
	}

	textID := util.GenUUID()
	writeEvent(streamEvent{Type: "start"})
	if haveFirst {
		writeEvent(streamEvent{Type: "text-start", ID: textID})
		writeEvent(streamEvent{Type: "text-delta", ID: textID, Delta: first})
	}

	if waitContent == nil {
		contentCh = nil // upstream produced nothing; skip straight to finish
	}
	if waitErr == nil {
		errCh = nil
	}

	for contentCh != nil || statsCh != nil || errCh != nil {
		select {
		case delta, ok := <-contentCh:
			if !ok {
				contentCh = nil
				continue
			}
			writeEvent(streamEvent{Type: "text-delta", ID: textID, Delta: delta})
			continue
		default:
		}

		select {
		case delta, ok := <-contentCh:
			if !ok {
				contentCh = nil
				continue
			}
			writeEvent(streamEvent{Type: "text-delta", ID: textID, Delta: delta})
		case stats, ok := <-statsCh:
			if !ok {
				statsCh = nil
				continue
			}
			if stats != nil {
				s.Metrics.StreamTokens.Observe(float64(stats.TotalTokens))
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
				writeEvent(streamEvent{Type: "error", ErrorText: "completion provider error: " + err.Error()})
				writeDone()
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}

	if haveFirst {
		writeEvent(streamEvent{Type: "text-end", ID: textID})
	}
	writeEvent(streamEvent{Type: "finish"})
	writeDone()

	s.Metrics.ChatRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	s.Metrics.StreamDuration.Observe(time.Since(started).Seconds())
	return nil
}
