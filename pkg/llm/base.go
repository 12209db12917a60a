// Package llm provides interfaces and utilities for Large Language Model
// (LLM) providers.
//
// It defines the Provider interface that all LLM implementations must
// satisfy, along with message types, generation options, and the streamed
// chunk type used for incremental replies.
package llm

import "context"

// Provider defines the interface for LLM providers.
//
// All LLM implementations (OpenAI-compatible, Ollama, ...) must implement
// this interface. Failures of any kind (network, auth, rate limit) are
// reported as a single error; callers do not distinguish them.
type Provider interface {
	// Generate generates text from a single prompt.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateWithMessages generates text from a conversation history
	// (system, user, assistant messages).
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)

	// GenerateStreamWithMessages generates text from a conversation
	// history and streams it incrementally.
	//
	// The returned channel yields chunks until a terminal chunk with
	// Done set; a failed generation terminates the stream with Err set
	// on that chunk. The channel is closed after the terminal chunk.
	// An immediate setup failure is returned as the error instead.
	GenerateStreamWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (<-chan StreamChunk, error)

	// Close closes the provider and releases resources.
	Close() error
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the message role: "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message content text.
	Content string `json:"content"`
}

// StreamChunk is one increment of a streamed generation.
//
// Consumers read chunks until Done is true, never assuming a fixed chunk
// count. Err is only ever set on a terminal chunk.
type StreamChunk struct {
	// Delta is the incremental text produced since the previous chunk.
	Delta string

	// Done marks the terminal chunk of the stream.
	Done bool

	// Err carries the generation failure, if any. Set only when Done.
	Err error
}

// GenerateOptions contains options for text generation.
type GenerateOptions struct {
	// Temperature controls randomness (0.0-2.0). Higher = more random.
	Temperature float64

	// MaxTokens limits the maximum number of tokens in the response.
	MaxTokens int

	// TopP controls nucleus sampling (0.0-1.0). Higher = more diverse.
	TopP float64
}

// GenerateOption is a function type for configuring generation options.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the temperature for text generation.
//
// Example:
//
//	text, _ := provider.Generate(ctx, "Hello", llm.WithTemperature(0.8))
func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens in the response.
func WithMaxTokens(max int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = max
	}
}

// WithTopP sets the top-p (nucleus sampling) parameter.
func WithTopP(topP float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.TopP = topP
	}
}

// ApplyGenerateOptions applies a slice of GenerateOption functions to create
// GenerateOptions.
//
// This is a helper used internally by LLM implementations.
// Default values: Temperature=0.7, MaxTokens=300, TopP=1.0.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   300,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
