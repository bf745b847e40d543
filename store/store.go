package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/promptdeck/internal/profile"
	"github.com/hrygo/promptdeck/store/cache"
)

const (
	// opTimeout bounds each driver round trip. The upstream document
	// store client had no timeout at all; this is the hardening variant.
	opTimeout = 5 * time.Second

	promptCacheTTL = time.Minute
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	promptCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		promptCache: cache.New(cache.Config{
			DefaultTTL:      promptCacheTTL,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        16,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.promptCache.Close()
	return s.driver.Close()
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.driver.GetDB().PingContext(ctx)
}

// GetSystemPrompt returns the active system prompt. It never fails: a
// missing record or an unreachable driver falls back to the default
// instruction, so a degraded store cannot take the chat down.
func (s *Store) GetSystemPrompt(ctx context.Context) string {
	if cached, ok := s.promptCache.Get(SystemPromptKey); ok {
		if prompt, ok := cached.(string); ok {
			return prompt
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	record, err := s.driver.GetSystemPrompt(ctx, SystemPromptKey)
	if err != nil {
		slog.Warn("store: failed to fetch system prompt, using default", "error", err)
		return DefaultSystemPrompt
	}
	if record == nil || record.Prompt == "" {
		return DefaultSystemPrompt
	}

	s.promptCache.Set(SystemPromptKey, record.Prompt)
	return record.Prompt
}

// UpsertSystemPrompt wholesale-overwrites the system prompt record.
// Last write wins; there is no merge or concurrency check. One retry on
// a transient driver error.
func (s *Store) UpsertSystemPrompt(ctx context.Context, prompt string) (*SystemPromptRecord, error) {
	record := &SystemPromptRecord{
		ID:        SystemPromptKey,
		Prompt:    prompt,
		UpdatedTs: time.Now().Unix(),
	}

	var saved *SystemPromptRecord
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		saved, err = s.driver.UpsertSystemPrompt(opCtx, record)
		cancel()
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		slog.Warn("store: upsert system prompt failed, retrying once", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		return nil, err
	}

	s.promptCache.Set(SystemPromptKey, saved.Prompt)
	return saved, nil
}
