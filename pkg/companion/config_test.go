package companion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emma-labs/emma-go/pkg/companion"
)

func TestDefaultConfig(t *testing.T) {
	cfg := companion.DefaultConfig()

	assert.Equal(t, "Emma", cfg.AgentName)
	assert.Equal(t, 12*time.Second, cfg.Engagement.FollowUpDelay)
	assert.Equal(t, 20*time.Second, cfg.Engagement.CheckinDelay)
	assert.True(t, cfg.Engagement.DedupEnabled)
	assert.Equal(t, 6, cfg.History.MaxContextMessages)
	assert.Nil(t, cfg.Journal)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*companion.Config)
		wantErr bool
	}{
		{"valid", func(c *companion.Config) {}, false},
		{"missing llm provider", func(c *companion.Config) { c.LLM.Provider = "" }, true},
		{"zero follow-up delay", func(c *companion.Config) { c.Engagement.FollowUpDelay = 0 }, true},
		{"negative check-in delay", func(c *companion.Config) { c.Engagement.CheckinDelay = -time.Second }, true},
		{"zero context window", func(c *companion.Config) { c.History.MaxContextMessages = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, companion.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AGENT_NAME", "Nova")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("LLM_MODEL", "mistral-tiny-latest")
	t.Setenv("LLM_BASE_URL", "https://api.mistral.ai/v1")
	t.Setenv("FOLLOW_UP_DELAY_SECONDS", "5")
	t.Setenv("CHECKIN_DELAY_SECONDS", "9")
	t.Setenv("DEDUP_ENABLED", "false")
	t.Setenv("MAX_CONVERSATION_CONTEXT", "10")

	cfg, err := companion.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "Nova", cfg.AgentName)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "mistral-tiny-latest", cfg.LLM.Model)
	assert.Equal(t, "https://api.mistral.ai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Engagement.FollowUpDelay)
	assert.Equal(t, 9*time.Second, cfg.Engagement.CheckinDelay)
	assert.False(t, cfg.Engagement.DedupEnabled)
	assert.Equal(t, 10, cfg.History.MaxContextMessages)
}

func TestLoadConfigFromEnvMistralFallbacks(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("MISTRAL_API_KEY", "mistral-key")
	t.Setenv("MISTRAL_MODEL", "mistral-small-latest")
	t.Setenv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1")

	cfg, err := companion.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "mistral-key", cfg.LLM.APIKey)
	assert.Equal(t, "mistral-small-latest", cfg.LLM.Model)
	assert.Equal(t, "https://api.mistral.ai/v1", cfg.LLM.BaseURL)
}

func TestLoadConfigFromEnvRejectsMalformedNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FOLLOW_UP_DELAY_SECONDS", "soon"},
		{"CHECKIN_DELAY_SECONDS", "12.5"},
		{"MAX_CONVERSATION_CONTEXT", "many"},
		{"DEDUP_ENABLED", "yep"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := companion.LoadConfigFromEnv()
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, companion.ErrInvalidConfig)
		})
	}
}

func TestLoadConfigFromEnvJournal(t *testing.T) {
	t.Setenv("JOURNAL_PROVIDER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/emma_test.db")

	cfg, err := companion.LoadConfigFromEnv()
	require.NoError(t, err)

	require.NotNil(t, cfg.Journal)
	assert.Equal(t, "sqlite", cfg.Journal.Provider)
	assert.Equal(t, "/tmp/emma_test.db", cfg.Journal.Config["db_path"])
}

func TestLoadConfigFromEnvJournalDisabled(t *testing.T) {
	t.Setenv("JOURNAL_PROVIDER", "none")

	cfg, err := companion.LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Nil(t, cfg.Journal)
}

func TestLoadConfigFromEnvRejectsUnknownJournal(t *testing.T) {
	t.Setenv("JOURNAL_PROVIDER", "parchment")

	cfg, err := companion.LoadConfigFromEnv()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, companion.ErrInvalidConfig)
}
