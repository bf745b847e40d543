package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Completion provider configuration (OpenAI-compatible protocol).
	XAIAPIKey    string // xAI API key used for chat completions
	XAIBaseURL   string // completion endpoint base URL (default: https://api.x.ai/v1)
	DefaultModel string // model used when the request omits or mangles the model field
	LLMTimeout   int    // completion request timeout in seconds (default: 120)
	LLMMaxTokens int    // completion max tokens (0 = provider default)

	// Access control configuration.
	AdminKey        string // shared secret for the login page / UI session cookie
	ChatSecret      string // shared secret for the chat endpoint in the gated variant
	ChatRequireAuth bool   // require a credential on every chat request
	ChatAllowEmpty  bool   // accept chat requests with an empty message list

	// Server configuration.
	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string
	DSN     string
	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvOrDefaultBool returns environment variable value as bool or default value.
func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.XAIAPIKey = getEnvOrDefault("PROMPTDECK_XAI_API_KEY", "")
	p.XAIBaseURL = getEnvOrDefault("PROMPTDECK_XAI_BASE_URL", "https://api.x.ai/v1")
	p.DefaultModel = getEnvOrDefault("PROMPTDECK_DEFAULT_MODEL", "grok-4-fast-reasoning")
	p.LLMTimeout = getEnvOrDefaultInt("PROMPTDECK_LLM_TIMEOUT_SECONDS", 120)
	p.LLMMaxTokens = getEnvOrDefaultInt("PROMPTDECK_LLM_MAX_TOKENS", 0)

	p.AdminKey = getEnvOrDefault("PROMPTDECK_ADMIN_KEY", "")
	p.ChatSecret = getEnvOrDefault("PROMPTDECK_CHAT_SECRET", "")
	p.ChatRequireAuth = getEnvOrDefaultBool("PROMPTDECK_CHAT_REQUIRE_AUTH", p.ChatSecret != "")
	p.ChatAllowEmpty = getEnvOrDefaultBool("PROMPTDECK_CHAT_ALLOW_EMPTY", false)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and rejects configurations the server
// cannot start with. A missing database connection string is fatal here;
// missing secrets are not, they surface per-request instead.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			return errors.New("either dsn or data directory is required for sqlite")
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("promptdeck_%s.db", p.Mode))
	}

	if p.DSN == "" {
		return errors.New("database connection string (dsn) is required")
	}

	return nil
}
