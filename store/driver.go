package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for database access.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	// GetSystemPrompt returns the record for the given key, or (nil, nil)
	// when no record exists.
	GetSystemPrompt(ctx context.Context, key string) (*SystemPromptRecord, error)

	// UpsertSystemPrompt creates or wholesale-overwrites the record.
	UpsertSystemPrompt(ctx context.Context, record *SystemPromptRecord) (*SystemPromptRecord, error)
}
