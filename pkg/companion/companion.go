package companion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/emma-labs/emma-go/pkg/intelligence"
	"github.com/emma-labs/emma-go/pkg/journal"
	journalMySQL "github.com/emma-labs/emma-go/pkg/journal/mysql"
	journalPostgres "github.com/emma-labs/emma-go/pkg/journal/postgres"
	journalSQLite "github.com/emma-labs/emma-go/pkg/journal/sqlite"
	"github.com/emma-labs/emma-go/pkg/llm"
	ollamaLLM "github.com/emma-labs/emma-go/pkg/llm/ollama"
	openaiLLM "github.com/emma-labs/emma-go/pkg/llm/openai"
	"github.com/emma-labs/emma-go/pkg/memory"
)

// Agent is one companion session: the conversation orchestrator over the
// memory store, the engagement clock, the proactive decision engine, and
// the language-model provider.
//
// Each Agent owns its state exclusively; there are no process-wide
// singletons, so concurrent sessions are isolated by construction. Within
// a session, a mutex serializes the two entry points (turn processing and
// proactive polling) so a poll tick racing a user turn always observes the
// turn's activity timestamp before thresholds are evaluated.
//
// Session state lives in process memory and is discarded when the Agent is
// closed; the optional journal is an export, not a recovery mechanism.
//
// Example:
//
//	config, _ := companion.LoadConfigFromEnv()
//	agent, _ := companion.NewAgent(config)
//	defer agent.Close()
//
//	reply, _ := agent.ProcessTurn(ctx, "I have a job interview tomorrow", time.Now())
//	// ... later, on a timer:
//	if msg := agent.Poll(time.Now()); msg != nil {
//	    display(msg.Message)
//	}
type Agent struct {
	// config contains the session configuration.
	config *Config

	// store holds the session's memory records.
	store *memory.Store

	// extractor turns turns into candidate records.
	extractor *intelligence.Extractor

	// clock tracks interaction and proactive timestamps.
	clock *intelligence.Clock

	// engine decides when and what to say proactively.
	engine *intelligence.Engine

	// provider is the language-model client.
	provider llm.Provider

	// journal is the optional session journal (nil when disabled).
	journal journal.Journal

	// node generates unique IDs for memory records.
	node *snowflake.Node

	// history is the role-tagged conversation transcript.
	history []llm.Message

	// prompt is the persona system prompt.
	prompt string

	// mu serializes turn processing and proactive polling.
	mu sync.Mutex
}

// ProactiveMessage is a proactive message ready for display.
type ProactiveMessage struct {
	// Message is the ready-to-display text.
	Message string

	// Kind distinguishes follow-ups from generic check-ins.
	Kind intelligence.Kind

	// Category is the memory category the message addresses, for UI
	// labeling. Empty for check-ins.
	Category memory.Category
}

// NewAgent creates a new companion session from the configuration.
//
// Configuration is validated first; an invalid threshold fails setup
// immediately. Collaborators not injected through options are constructed
// from the configuration.
func NewAgent(cfg *Config, opts ...Option) (*Agent, error) {
	if cfg == nil {
		return nil, NewCompanionError("NewAgent",
			fmt.Errorf("%w: configuration is required", ErrInvalidConfig))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &agentOptions{}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		p, err := initProvider(cfg.LLM)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	jrnl := options.journal
	if jrnl == nil && cfg.Journal != nil {
		j, err := initJournal(cfg.Journal)
		if err != nil {
			return nil, err
		}
		jrnl = j
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewCompanionError("NewAgent", err)
	}

	prompt := options.systemPrompt
	if prompt == "" {
		prompt = systemPrompt(cfg.AgentName)
	}

	store := memory.NewStore(cfg.Engagement.DedupEnabled)
	clock := intelligence.NewClock()

	return &Agent{
		config:    cfg,
		store:     store,
		extractor: intelligence.NewExtractor(),
		clock:     clock,
		engine:    intelligence.NewEngine(store, clock, cfg.Engagement.FollowUpDelay, cfg.Engagement.CheckinDelay),
		provider:  provider,
		journal:   jrnl,
		node:      node,
		prompt:    prompt,
	}, nil
}

// ProcessTurn handles one user turn and returns the complete reply.
//
// The turn is processed in order: the activity timestamp is recorded,
// memories are extracted and committed, and only then is the reply
// generated. A generation failure therefore never loses the extracted
// memories; the apologetic fallback reply is returned together with an
// error wrapping ErrGenerationFailed, and the user may simply send
// another turn.
func (a *Agent) ProcessTurn(ctx context.Context, text string, now time.Time) (string, error) {
	messages := a.beginTurn(ctx, text, now)

	reply, err := a.provider.GenerateWithMessages(ctx, messages,
		llm.WithTemperature(0.8), llm.WithMaxTokens(300))
	if err != nil {
		reply = fallbackReply
		err = NewCompanionError("ProcessTurn", fmt.Errorf("%w: %v", ErrGenerationFailed, err))
	}

	a.finishReply(ctx, reply, now)
	return reply, err
}

// Poll asks the decision engine whether a proactive message is due at the
// given time.
//
// Returns nil when the companion should stay quiet, which is the common
// case: polling is idempotent until a threshold is crossed. A returned
// message has already been appended to the conversation history.
func (a *Agent) Poll(now time.Time) *ProactiveMessage {
	a.mu.Lock()
	defer a.mu.Unlock()

	eng := a.engine.MaybeEngage(now)
	if eng == nil {
		return nil
	}

	a.history = append(a.history, llm.Message{Role: "assistant", Content: eng.Message})
	a.journalTurn(context.Background(), "assistant", eng.Message, now)

	return &ProactiveMessage{
		Message:  eng.Message,
		Kind:     eng.Kind,
		Category: eng.Category,
	}
}

// Memories returns a read-only snapshot of the session's memory records.
func (a *Agent) Memories() []*memory.Record {
	return a.store.All()
}

// History returns a copy of the conversation transcript.
func (a *Agent) History() []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]llm.Message, len(a.history))
	copy(out, a.history)
	return out
}

// Close closes the provider and the journal.
func (a *Agent) Close() error {
	var firstErr error
	if err := a.provider.Close(); err != nil {
		firstErr = NewCompanionError("Close", err)
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil && firstErr == nil {
			firstErr = NewCompanionError("Close", err)
		}
	}
	return firstErr
}

// beginTurn applies the turn's state updates under the session lock and
// returns the LLM context. Activity recording happens before anything
// else, so a concurrent poll can never fire a stale check-in for a turn
// that has already arrived.
func (a *Agent) beginTurn(ctx context.Context, text string, now time.Time) []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.clock.RecordUserActivity(now)

	for _, rec := range a.extractor.Extract(text, now) {
		rec.ID = a.node.Generate().Int64()
		stored := a.store.Add(rec)
		a.journalRecord(ctx, rec, stored)
	}

	a.history = append(a.history, llm.Message{Role: "user", Content: text})
	a.journalTurn(ctx, "user", text, now)

	return a.contextMessages()
}

// finishReply appends the assistant reply to the transcript.
func (a *Agent) finishReply(ctx context.Context, reply string, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, llm.Message{Role: "assistant", Content: reply})
	a.journalTurn(ctx, "assistant", reply, now)
}

// contextMessages builds the LLM context: the persona prompt followed by
// the most recent conversation messages. Callers hold the session lock.
func (a *Agent) contextMessages() []llm.Message {
	recent := a.history
	if max := a.config.History.MaxContextMessages; len(recent) > max {
		recent = recent[len(recent)-max:]
	}

	messages := make([]llm.Message, 0, len(recent)+1)
	messages = append(messages, llm.Message{Role: "system", Content: a.prompt})
	messages = append(messages, recent...)
	return messages
}

// journalTurn writes a turn to the journal, dropping any failure: journal
// errors are never fatal to the session.
func (a *Agent) journalTurn(ctx context.Context, role, text string, at time.Time) {
	if a.journal == nil {
		return
	}
	_ = a.journal.AppendTurn(ctx, role, text, at)
}

// journalRecord writes an extraction outcome to the journal.
func (a *Agent) journalRecord(ctx context.Context, rec *memory.Record, stored bool) {
	if a.journal == nil {
		return
	}
	_ = a.journal.AppendRecord(ctx, rec, stored)
}

// initProvider constructs the language-model provider from configuration.
func initProvider(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, NewCompanionError("NewAgent",
			fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initJournal constructs the journal backend from configuration.
func initJournal(cfg *JournalConfig) (journal.Journal, error) {
	switch cfg.Provider {
	case "sqlite":
		return journalSQLite.NewClient(&journalSQLite.Config{
			DBPath: getString(cfg.Config, "db_path", "./emma_journal.db"),
		})
	case "postgres":
		return journalPostgres.NewClient(&journalPostgres.Config{
			Host:     getString(cfg.Config, "host", "localhost"),
			Port:     getInt(cfg.Config, "port", 5432),
			User:     getString(cfg.Config, "user", "postgres"),
			Password: getString(cfg.Config, "password", ""),
			DBName:   getString(cfg.Config, "db_name", "emma"),
			SSLMode:  getString(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		return journalMySQL.NewClient(&journalMySQL.Config{
			Host:     getString(cfg.Config, "host", "localhost"),
			Port:     getInt(cfg.Config, "port", 3306),
			User:     getString(cfg.Config, "user", "root"),
			Password: getString(cfg.Config, "password", ""),
			DBName:   getString(cfg.Config, "db_name", "emma"),
		})
	default:
		return nil, NewCompanionError("NewAgent",
			fmt.Errorf("%w: unknown journal provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// getString reads a string value from a provider config map.
func getString(m map[string]interface{}, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

// getInt reads an integer value from a provider config map. JSON decoding
// produces float64, so both forms are accepted.
func getInt(m map[string]interface{}, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}
