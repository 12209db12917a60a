// Package ollama provides an Ollama LLM client for locally hosted models.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emma-labs/emma-go/pkg/llm"
)

// Client is an Ollama LLM client.
// It implements the llm.Provider interface against a local or remote Ollama
// service, including streamed generation over the NDJSON chat endpoint.
type Client struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
}

// Config is the configuration for the Ollama client.
// APIKey: optional, only needed for authenticated remote deployments
// Model: model name to use, defaults to "llama3.1:8b"
// BaseURL: service address, defaults to "http://localhost:11434"
// HTTPClient: custom HTTP client, if nil uses a default with 120s timeout
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new Ollama LLM client.
func NewClient(cfg *Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = "llama3.1:8b"
	}

	client := cfg.HTTPClient
	if client == nil {
		// Local models can be slow to produce the first token.
		client = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// chatResponse is one line of the /api/chat response. In non-streaming mode
// a single object arrives; in streaming mode one object per delta.
type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Generate generates text based on the prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	messages := []llm.Message{
		{Role: "user", Content: prompt},
	}
	return c.GenerateWithMessages(ctx, messages, opts...)
}

// GenerateWithMessages generates text using message history.
// Note: Ollama uses different parameter names (num_predict instead of
// max_tokens).
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	resp, err := c.post(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}

	return parsed.Message.Content, nil
}

// GenerateStreamWithMessages generates text using message history and
// streams it incrementally. Each NDJSON line of the chat endpoint becomes
// one chunk; the line with done=true terminates the stream.
func (c *Client) GenerateStreamWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (<-chan llm.StreamChunk, error) {
	resp, err := c.post(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.StreamChunk, 1)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)
		for {
			var line chatResponse
			if err := decoder.Decode(&line); err != nil {
				if err == io.EOF {
					out <- llm.StreamChunk{Done: true}
				} else {
					out <- llm.StreamChunk{Done: true, Err: fmt.Errorf("decode stream: %w", err)}
				}
				return
			}
			if line.Error != "" {
				out <- llm.StreamChunk{Done: true, Err: fmt.Errorf("ollama: %s", line.Error)}
				return
			}
			if line.Message.Content != "" {
				out <- llm.StreamChunk{Delta: line.Message.Content}
			}
			if line.Done {
				out <- llm.StreamChunk{Done: true}
				return
			}
		}
	}()

	return out, nil
}

// post issues a chat request and returns the raw response after checking
// the HTTP status.
func (c *Client) post(ctx context.Context, messages []llm.Message, opts []llm.GenerateOption, stream bool) (*http.Response, error) {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]map[string]string, len(messages))
	for i, msg := range messages {
		chatMessages[i] = map[string]string{
			"role":    msg.Role,
			"content": msg.Content,
		}
	}

	reqBody := map[string]interface{}{
		"model":    c.model,
		"messages": chatMessages,
		"stream":   stream,
		"options": map[string]interface{}{
			"temperature": options.Temperature,
			"num_predict": options.MaxTokens,
			"top_p":       options.TopP,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// Close closes the client connection.
// The HTTP client does not require explicit closing; this method is
// retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
