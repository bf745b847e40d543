package profile

import (
	"strings"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PROMPTDECK_XAI_API_KEY", "")
	t.Setenv("PROMPTDECK_XAI_BASE_URL", "")
	t.Setenv("PROMPTDECK_DEFAULT_MODEL", "")
	t.Setenv("PROMPTDECK_CHAT_SECRET", "")
	t.Setenv("PROMPTDECK_CHAT_REQUIRE_AUTH", "")
	t.Setenv("PROMPTDECK_CHAT_ALLOW_EMPTY", "")

	p := &Profile{}
	p.FromEnv()

	if p.XAIBaseURL != "https://api.x.ai/v1" {
		t.Errorf("Expected default base URL, got %s", p.XAIBaseURL)
	}
	if p.DefaultModel != "grok-4-fast-reasoning" {
		t.Errorf("Expected default model grok-4-fast-reasoning, got %s", p.DefaultModel)
	}
	if p.LLMTimeout != 120 {
		t.Errorf("Expected default timeout 120, got %d", p.LLMTimeout)
	}
	if p.ChatRequireAuth {
		t.Errorf("Expected ChatRequireAuth=false without a chat secret")
	}
	if p.ChatAllowEmpty {
		t.Errorf("Expected ChatAllowEmpty=false by default")
	}
}

func TestFromEnvChatSecretImpliesAuth(t *testing.T) {
	t.Setenv("PROMPTDECK_CHAT_SECRET", "s3cret")
	t.Setenv("PROMPTDECK_CHAT_REQUIRE_AUTH", "")

	p := &Profile{}
	p.FromEnv()

	if !p.ChatRequireAuth {
		t.Errorf("Expected ChatRequireAuth=true when a chat secret is configured")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		profile   *Profile
		expectErr string
	}{
		{
			name:    "postgres with dsn",
			profile: &Profile{Mode: "dev", Driver: "postgres", DSN: "postgres://localhost/promptdeck"},
		},
		{
			name:      "postgres without dsn",
			profile:   &Profile{Mode: "dev", Driver: "postgres"},
			expectErr: "dsn",
		},
		{
			name:      "unknown driver",
			profile:   &Profile{Mode: "dev", Driver: "mysql", DSN: "whatever"},
			expectErr: "unsupported database driver",
		},
		{
			name:      "sqlite without dsn or data",
			profile:   &Profile{Mode: "dev", Driver: "sqlite"},
			expectErr: "data directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.expectErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.expectErr)
			}
		})
	}
}

func TestValidateSQLiteDerivesDSN(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "dev", Driver: "sqlite", Data: dir}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if !strings.Contains(p.DSN, "promptdeck_dev.db") {
		t.Errorf("Expected derived sqlite DSN, got %s", p.DSN)
	}
}

func TestValidateNormalizesMode(t *testing.T) {
	p := &Profile{Mode: "staging", Driver: "postgres", DSN: "postgres://localhost/x"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if p.Mode != "demo" {
		t.Errorf("Expected mode normalized to demo, got %s", p.Mode)
	}
}
