package companion

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default engagement timing. Short on purpose: the original product used
// second-scale thresholds so proactive behavior is observable in a demo.
const (
	defaultFollowUpDelay      = 12 * time.Second
	defaultCheckinDelay       = 20 * time.Second
	defaultMaxContextMessages = 6
	defaultAgentName          = "Emma"
)

// Config contains the complete configuration for a companion session.
//
// Example:
//
//	config := &companion.Config{
//	    LLM: companion.LLMConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "mistral-tiny-latest",
//	        BaseURL:  "https://api.mistral.ai/v1",
//	    },
//	    Engagement: companion.EngagementConfig{
//	        FollowUpDelay: 12 * time.Second,
//	        CheckinDelay:  20 * time.Second,
//	        DedupEnabled:  true,
//	    },
//	}
type Config struct {
	// AgentName is the companion's display name.
	AgentName string `json:"agent_name"`

	// LLM contains language-model provider configuration.
	LLM LLMConfig `json:"llm"`

	// Engagement contains proactive-messaging configuration.
	Engagement EngagementConfig `json:"engagement"`

	// History contains conversation context configuration.
	History HistoryConfig `json:"history"`

	// Journal contains optional session journal configuration.
	// Nil disables journaling.
	Journal *JournalConfig `json:"journal,omitempty"`
}

// LLMConfig contains configuration for the language-model provider.
//
// Supported providers: openai (any OpenAI-compatible endpoint), ollama.
type LLMConfig struct {
	// Provider is the LLM provider name (openai, ollama).
	Provider string `json:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use.
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider
	// default if empty). An OpenAI-compatible BaseURL is how the
	// companion talks to Mistral and similar hosts.
	BaseURL string `json:"base_url,omitempty"`
}

// EngagementConfig contains proactive-messaging thresholds.
type EngagementConfig struct {
	// FollowUpDelay is the minimum idle and since-last-proactive time
	// before a follow-up fires.
	FollowUpDelay time.Duration `json:"follow_up_delay"`

	// CheckinDelay is the minimum idle and since-last-proactive time
	// before a generic check-in fires.
	CheckinDelay time.Duration `json:"checkin_delay"`

	// DedupEnabled enables near-duplicate suppression in the memory store.
	DedupEnabled bool `json:"dedup_enabled"`
}

// HistoryConfig contains conversation context configuration.
type HistoryConfig struct {
	// MaxContextMessages is the number of recent conversation messages
	// included in the LLM context.
	MaxContextMessages int `json:"max_context_messages"`
}

// JournalConfig contains configuration for the optional session journal.
//
// Supported providers: sqlite, postgres, mysql.
type JournalConfig struct {
	// Provider is the journal backend name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path
	// For PostgreSQL: host, port, user, password, db_name, ssl_mode
	// For MySQL: host, port, user, password, db_name
	Config map[string]interface{} `json:"config"`
}

// DefaultConfig returns a configuration with all defaults applied and no
// LLM provider set; callers fill in LLM before use.
func DefaultConfig() *Config {
	return &Config{
		AgentName: defaultAgentName,
		Engagement: EngagementConfig{
			FollowUpDelay: defaultFollowUpDelay,
			CheckinDelay:  defaultCheckinDelay,
			DedupEnabled:  true,
		},
		History: HistoryConfig{
			MaxContextMessages: defaultMaxContextMessages,
		},
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - AGENT_NAME
//   - LLM_PROVIDER (openai, ollama), LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - MISTRAL_BASE_URL, MISTRAL_API_KEY, MISTRAL_MODEL (fallbacks for the
//     openai provider, matching the original deployment)
//   - FOLLOW_UP_DELAY_SECONDS, CHECKIN_DELAY_SECONDS, DEDUP_ENABLED
//   - MAX_CONVERSATION_CONTEXT
//   - JOURNAL_PROVIDER (sqlite, postgres, mysql) plus SQLITE_PATH,
//     POSTGRES_* or MYSQL_* settings
//
// A malformed numeric variable is an error, never silently defaulted.
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	config := DefaultConfig()
	config.AgentName = getEnvOrDefault("AGENT_NAME", defaultAgentName)

	config.LLM = LLMConfig{
		Provider: getEnvOrDefault("LLM_PROVIDER", "openai"),
		APIKey:   firstEnv("LLM_API_KEY", "MISTRAL_API_KEY"),
		Model:    firstEnv("LLM_MODEL", "MISTRAL_MODEL"),
		BaseURL:  firstEnv("LLM_BASE_URL", "MISTRAL_BASE_URL"),
	}

	followUp, err := envSeconds("FOLLOW_UP_DELAY_SECONDS", defaultFollowUpDelay)
	if err != nil {
		return nil, err
	}
	checkin, err := envSeconds("CHECKIN_DELAY_SECONDS", defaultCheckinDelay)
	if err != nil {
		return nil, err
	}
	dedup, err := envBool("DEDUP_ENABLED", true)
	if err != nil {
		return nil, err
	}
	config.Engagement = EngagementConfig{
		FollowUpDelay: followUp,
		CheckinDelay:  checkin,
		DedupEnabled:  dedup,
	}

	maxContext, err := envInt("MAX_CONVERSATION_CONTEXT", defaultMaxContextMessages)
	if err != nil {
		return nil, err
	}
	config.History.MaxContextMessages = maxContext

	if journalConfig, err := journalConfigFromEnv(); err != nil {
		return nil, err
	} else if journalConfig != nil {
		config.Journal = journalConfig
	}

	return config, nil
}

// journalConfigFromEnv builds the journal configuration from JOURNAL_PROVIDER
// and its backend-specific variables. An empty or "none" provider disables
// journaling.
func journalConfigFromEnv() (*JournalConfig, error) {
	provider := os.Getenv("JOURNAL_PROVIDER")
	switch provider {
	case "", "none":
		return nil, nil
	case "sqlite":
		return &JournalConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path": getEnvOrDefault("SQLITE_PATH", "./emma_journal.db"),
			},
		}, nil
	case "postgres":
		port, err := envInt("POSTGRES_PORT", 5432)
		if err != nil {
			return nil, err
		}
		return &JournalConfig{
			Provider: "postgres",
			Config: map[string]interface{}{
				"host":     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				"port":     port,
				"user":     getEnvOrDefault("POSTGRES_USER", "postgres"),
				"password": os.Getenv("POSTGRES_PASSWORD"),
				"db_name":  getEnvOrDefault("POSTGRES_DATABASE", "emma"),
				"ssl_mode": getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			},
		}, nil
	case "mysql":
		port, err := envInt("MYSQL_PORT", 3306)
		if err != nil {
			return nil, err
		}
		return &JournalConfig{
			Provider: "mysql",
			Config: map[string]interface{}{
				"host":     getEnvOrDefault("MYSQL_HOST", "localhost"),
				"port":     port,
				"user":     getEnvOrDefault("MYSQL_USER", "root"),
				"password": os.Getenv("MYSQL_PASSWORD"),
				"db_name":  getEnvOrDefault("MYSQL_DATABASE", "emma"),
			},
		}, nil
	default:
		return nil, NewCompanionError("LoadConfigFromEnv",
			fmt.Errorf("%w: unknown journal provider %q", ErrInvalidConfig, provider))
	}
}

// Validate validates the configuration.
//
// Checks that:
//   - The LLM provider is specified
//   - Both engagement delays are positive
//   - The context window is positive
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return NewCompanionError("Validate",
			fmt.Errorf("%w: llm provider is required", ErrInvalidConfig))
	}
	if c.Engagement.FollowUpDelay <= 0 {
		return NewCompanionError("Validate",
			fmt.Errorf("%w: follow-up delay must be positive", ErrInvalidConfig))
	}
	if c.Engagement.CheckinDelay <= 0 {
		return NewCompanionError("Validate",
			fmt.Errorf("%w: check-in delay must be positive", ErrInvalidConfig))
	}
	if c.History.MaxContextMessages <= 0 {
		return NewCompanionError("Validate",
			fmt.Errorf("%w: context window must be positive", ErrInvalidConfig))
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among the given variables.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

// envSeconds parses an integer-seconds environment variable into a duration.
func envSeconds(key string, def time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	secs, err := strconv.Atoi(value)
	if err != nil {
		return 0, NewCompanionError("LoadConfigFromEnv",
			fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, key, value))
	}
	return time.Duration(secs) * time.Second, nil
}

// envInt parses an integer environment variable.
func envInt(key string, def int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, NewCompanionError("LoadConfigFromEnv",
			fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, key, value))
	}
	return n, nil
}

// envBool parses a boolean environment variable.
func envBool(key string, def bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, NewCompanionError("LoadConfigFromEnv",
			fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidConfig, key, value))
	}
	return b, nil
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns the path to the found file and whether one was found.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
