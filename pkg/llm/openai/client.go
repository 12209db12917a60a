// Package openai provides an OpenAI-compatible LLM client.
//
// Any endpoint speaking the OpenAI chat-completions protocol works through
// this client; set BaseURL to target Mistral, Groq, or another compatible
// host.
package openai

import (
	"context"
	"errors"
	"io"

	"github.com/emma-labs/emma-go/pkg/llm"
	openai "github.com/sashabaranov/go-openai"
)

// Client is an OpenAI-compatible LLM client.
// It implements the llm.Provider interface, including streamed generation.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for the OpenAI-compatible client.
// APIKey: API key (required by most hosts)
// Model: Model name to use, defaults to "gpt-4o-mini"
// BaseURL: API base URL, defaults to the OpenAI official address
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new OpenAI-compatible LLM client.
//
// Args:
//   - cfg: Configuration containing APIKey, Model, and BaseURL
//
// Returns:
//   - *Client: Client instance
//   - error: Returns an error if initialization fails
func NewClient(cfg *Config) (*Client, error) {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate generates text based on the prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt},
	}
	return c.GenerateWithMessages(ctx, messages, opts...)
}

// GenerateWithMessages generates text using message history.
// Supports multi-turn conversations and accepts complete message history
// (including system, user, and assistant messages).
//
// Args:
//   - ctx: Context for controlling the request lifecycle
//   - messages: Message history list, each message contains role and content
//   - opts: Optional generation parameters (temperature, max_tokens, top_p)
//
// Returns:
//   - string: Generated text content
//   - error: Returns an error if generation fails
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(messages, opts))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("llm generation failed: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateStreamWithMessages generates text using message history and
// streams it incrementally.
//
// Each delta from the completion stream is forwarded as a chunk; the stream
// terminates with a Done chunk carrying any mid-stream error.
func (c *Client) GenerateStreamWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (<-chan llm.StreamChunk, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(messages, opts))
	if err != nil {
		return nil, err
	}

	out := make(chan llm.StreamChunk, 1)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				out <- llm.StreamChunk{Done: true}
				return
			}
			if err != nil {
				out <- llm.StreamChunk{Done: true, Err: err}
				return
			}
			if len(resp.Choices) > 0 {
				if delta := resp.Choices[0].Delta.Content; delta != "" {
					out <- llm.StreamChunk{Delta: delta}
				}
			}
		}
	}()

	return out, nil
}

// buildRequest converts messages and options into a chat completion request.
func (c *Client) buildRequest(messages []llm.Message, opts []llm.GenerateOption) openai.ChatCompletionRequest {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
	}
}

// Close closes the client connection.
// The underlying SDK client does not require explicit closing; this method
// is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
