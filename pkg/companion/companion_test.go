package companion_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emma-labs/emma-go/pkg/companion"
	"github.com/emma-labs/emma-go/pkg/intelligence"
	"github.com/emma-labs/emma-go/pkg/llm"
	"github.com/emma-labs/emma-go/pkg/memory"
)

var turnBase = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// mockProvider is a scripted llm.Provider for session tests.
type mockProvider struct {
	mu           sync.Mutex
	reply        string
	err          error
	streamChunks []llm.StreamChunk
	streamErr    error
	lastMessages []llm.Message
	closed       bool
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return m.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (m *mockProvider) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastMessages = append([]llm.Message(nil), messages...)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockProvider) GenerateStreamWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (<-chan llm.StreamChunk, error) {
	m.mu.Lock()
	m.lastMessages = append([]llm.Message(nil), messages...)
	chunks := m.streamChunks
	err := m.streamErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}

	out := make(chan llm.StreamChunk, len(chunks)+1)
	for _, chunk := range chunks {
		out <- chunk
	}
	close(out)
	return out, nil
}

func (m *mockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockProvider) messages() []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Message(nil), m.lastMessages...)
}

// mockJournal records every append for inspection.
type mockJournal struct {
	mu      sync.Mutex
	turns   []string
	records []*memory.Record
	closed  bool
}

func (m *mockJournal) AppendTurn(ctx context.Context, role, text string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, role+": "+text)
	return nil
}

func (m *mockJournal) AppendRecord(ctx context.Context, rec *memory.Record, stored bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *mockJournal) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func testConfig() *companion.Config {
	cfg := companion.DefaultConfig()
	cfg.LLM = companion.LLMConfig{
		Provider: "openai",
		APIKey:   "test-key",
		Model:    "test-model",
	}
	cfg.Engagement.FollowUpDelay = 10 * time.Second
	cfg.Engagement.CheckinDelay = 20 * time.Second
	return cfg
}

func newTestAgent(t *testing.T, provider *mockProvider, opts ...companion.Option) *companion.Agent {
	t.Helper()
	opts = append([]companion.Option{companion.WithProvider(provider)}, opts...)
	agent, err := companion.NewAgent(testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = agent.Close() })
	return agent
}

func TestNewAgentRequiresConfig(t *testing.T) {
	agent, err := companion.NewAgent(nil)
	assert.Nil(t, agent)
	assert.ErrorIs(t, err, companion.ErrInvalidConfig)
}

func TestNewAgentValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Engagement.FollowUpDelay = 0

	agent, err := companion.NewAgent(cfg, companion.WithProvider(&mockProvider{}))
	assert.Nil(t, agent)
	assert.ErrorIs(t, err, companion.ErrInvalidConfig)
}

func TestNewAgentRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "carrier-pigeon"

	agent, err := companion.NewAgent(cfg)
	assert.Nil(t, agent)
	assert.ErrorIs(t, err, companion.ErrInvalidConfig)
}

func TestProcessTurnGeneratesReply(t *testing.T) {
	provider := &mockProvider{reply: "That sounds exciting! Good luck! ✨"}
	agent := newTestAgent(t, provider)

	reply, err := agent.ProcessTurn(context.Background(), "I have a job interview tomorrow", turnBase)
	require.NoError(t, err)
	assert.Equal(t, "That sounds exciting! Good luck! ✨", reply)

	// The turn committed an event memory.
	memories := agent.Memories()
	require.NotEmpty(t, memories)
	cats := make([]memory.Category, 0, len(memories))
	for _, rec := range memories {
		cats = append(cats, rec.Category)
		assert.NotZero(t, rec.ID)
	}
	assert.Contains(t, cats, memory.CategoryEvent)

	// The provider saw the persona prompt first and the turn last.
	messages := provider.messages()
	require.NotEmpty(t, messages)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "I have a job interview tomorrow", messages[len(messages)-1].Content)

	// The transcript holds the turn and the reply.
	history := agent.History()
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
}

func TestProcessTurnFallbackOnGenerationFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	agent := newTestAgent(t, provider)

	reply, err := agent.ProcessTurn(context.Background(), "I'm worried about my exam", turnBase)
	assert.ErrorIs(t, err, companion.ErrGenerationFailed)
	assert.Contains(t, reply, "having trouble connecting")

	// The failed generation did not lose the extracted memories.
	memories := agent.Memories()
	assert.NotEmpty(t, memories)

	// The fallback reply still enters the transcript.
	history := agent.History()
	require.Len(t, history, 2)
	assert.Equal(t, reply, history[1].Content)
}

func TestProcessTurnWindowsContext(t *testing.T) {
	provider := &mockProvider{reply: "ok"}

	cfg := testConfig()
	cfg.History.MaxContextMessages = 2
	agent, err := companion.NewAgent(cfg, companion.WithProvider(provider))
	require.NoError(t, err)
	defer agent.Close()

	for i, text := range []string{"first", "second", "third", "fourth"} {
		_, err := agent.ProcessTurn(context.Background(), text, turnBase.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	// System prompt plus the two most recent messages.
	messages := provider.messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "fourth", messages[len(messages)-1].Content)
}

func TestPollReturnsFollowUpAfterIdle(t *testing.T) {
	provider := &mockProvider{reply: "Good luck!"}
	agent := newTestAgent(t, provider)

	_, err := agent.ProcessTurn(context.Background(), "I have a job interview tomorrow", turnBase)
	require.NoError(t, err)

	msg := agent.Poll(turnBase.Add(12 * time.Second))
	require.NotNil(t, msg)
	assert.Equal(t, intelligence.KindFollowUp, msg.Kind)
	assert.Equal(t, memory.CategoryEvent, msg.Category)
	assert.NotEmpty(t, msg.Message)

	// The proactive message joins the transcript as an assistant turn.
	history := agent.History()
	assert.Equal(t, msg.Message, history[len(history)-1].Content)

	// Re-polling right away is rate-limited.
	assert.Nil(t, agent.Poll(turnBase.Add(13*time.Second)))
}

func TestPollQuietBeforeFirstTurn(t *testing.T) {
	agent := newTestAgent(t, &mockProvider{reply: "hi"})
	assert.Nil(t, agent.Poll(turnBase.Add(time.Minute)))
}

func TestMemoriesReturnsSnapshot(t *testing.T) {
	provider := &mockProvider{reply: "ok"}
	agent := newTestAgent(t, provider)

	_, err := agent.ProcessTurn(context.Background(), "feeling stressed today", turnBase)
	require.NoError(t, err)

	snapshot := agent.Memories()
	require.NotEmpty(t, snapshot)
	snapshot[0].FollowedUp = true

	assert.False(t, agent.Memories()[0].FollowedUp)
}

func TestAgentWritesJournal(t *testing.T) {
	provider := &mockProvider{reply: "ok"}
	jrnl := &mockJournal{}
	agent := newTestAgent(t, provider, companion.WithJournal(jrnl))

	_, err := agent.ProcessTurn(context.Background(), "I have an exam on Friday", turnBase)
	require.NoError(t, err)

	jrnl.mu.Lock()
	defer jrnl.mu.Unlock()
	require.Len(t, jrnl.turns, 2)
	assert.Equal(t, "user: I have an exam on Friday", jrnl.turns[0])
	assert.Equal(t, "assistant: ok", jrnl.turns[1])
	assert.NotEmpty(t, jrnl.records)
}

func TestCloseClosesCollaborators(t *testing.T) {
	provider := &mockProvider{reply: "ok"}
	jrnl := &mockJournal{}

	agent, err := companion.NewAgent(testConfig(),
		companion.WithProvider(provider), companion.WithJournal(jrnl))
	require.NoError(t, err)

	require.NoError(t, agent.Close())
	assert.True(t, provider.closed)
	assert.True(t, jrnl.closed)
}

func TestWithSystemPrompt(t *testing.T) {
	provider := &mockProvider{reply: "ok"}
	agent := newTestAgent(t, provider, companion.WithSystemPrompt("You are a terse assistant."))

	_, err := agent.ProcessTurn(context.Background(), "hello there", turnBase)
	require.NoError(t, err)

	messages := provider.messages()
	require.NotEmpty(t, messages)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "You are a terse assistant.", messages[0].Content)
}
