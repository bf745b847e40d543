package store

// SystemPromptKey is the fixed key of the single system prompt row each
// deployment holds.
const SystemPromptKey = "system"

// DefaultSystemPrompt is used when no record exists or the store is
// unreachable.
const DefaultSystemPrompt = "You are a helpful assistant."

// SystemPromptRecord is the persisted system prompt row.
type SystemPromptRecord struct {
	ID        string
	Prompt    string
	UpdatedTs int64
}
