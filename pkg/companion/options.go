package companion

import (
	"github.com/emma-labs/emma-go/pkg/journal"
	"github.com/emma-labs/emma-go/pkg/llm"
)

// Option is a function type for configuring a new Agent.
//
// Options are applied using the functional options pattern, allowing
// collaborators to be injected without widening the constructor.
type Option func(*agentOptions)

// agentOptions collects the injectable collaborators.
type agentOptions struct {
	provider     llm.Provider
	journal      journal.Journal
	systemPrompt string
}

// WithProvider injects a language-model provider, bypassing the provider
// construction the configuration would otherwise drive. Primarily used to
// substitute a test double.
//
// Example:
//
//	agent, _ := companion.NewAgent(cfg, companion.WithProvider(mockProvider))
func WithProvider(p llm.Provider) Option {
	return func(opts *agentOptions) {
		opts.provider = p
	}
}

// WithJournal injects a session journal, bypassing journal construction
// from configuration.
func WithJournal(j journal.Journal) Option {
	return func(opts *agentOptions) {
		opts.journal = j
	}
}

// WithSystemPrompt replaces the default persona prompt.
func WithSystemPrompt(prompt string) Option {
	return func(opts *agentOptions) {
		opts.systemPrompt = prompt
	}
}
