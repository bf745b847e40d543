package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/hrygo/promptdeck/store"
)

func (d *DB) GetSystemPrompt(ctx context.Context, key string) (*store.SystemPromptRecord, error) {
	record := &store.SystemPromptRecord{}
	err := d.db.QueryRowContext(ctx, `
		SELECT id, prompt, updated_ts FROM system_prompt WHERE id = $1
	`, key).Scan(&record.ID, &record.Prompt, &record.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get system prompt")
	}
	return record, nil
}

func (d *DB) UpsertSystemPrompt(ctx context.Context, record *store.SystemPromptRecord) (*store.SystemPromptRecord, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO system_prompt (id, prompt, updated_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			prompt = EXCLUDED.prompt,
			updated_ts = EXCLUDED.updated_ts
	`, record.ID, record.Prompt, record.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert system prompt")
	}
	return record, nil
}
