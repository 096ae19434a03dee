// Package ai talks to a local Ollama server for response generation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrBackendUnavailable means the model server could not be reached.
	ErrBackendUnavailable = errors.New("AI backend unavailable")

	// ErrBackendTimeout means the model took longer than the configured
	// timeout to answer.
	ErrBackendTimeout = errors.New("AI backend timed out")

	// ErrEmptyResponse means the model answered with no usable text.
	ErrEmptyResponse = errors.New("AI backend returned an empty response")
)

// Config holds model server settings.
type Config struct {
	BaseURL string        `json:"base_url" mapstructure:"base_url"`
	Model   string        `json:"model" mapstructure:"model"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns settings for a local Ollama install.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:11434",
		Model:   "llama3.2:latest",
		Timeout: 30 * time.Second,
	}
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat exchange.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is a minimal Ollama chat client.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client for the configured model server.
func NewClient(logger zerolog.Logger, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "ai").Logger(),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.config.Model
}

// IsAvailable checks whether the model server is reachable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type chatRequest struct {
	Model    string       `json:"model"`
	Messages []Message    `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  *chatOptions `json:"options,omitempty"`
}

type chatOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    Role   `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Chat sends the message list to the model and returns its reply. maxTokens
// caps the response length; zero means no cap. A connection failure is
// retried once immediately, which papers over the model server restarting
// between utterances.
func (c *Client) Chat(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	text, err := c.chat(ctx, messages, maxTokens)
	if errors.Is(err, ErrBackendUnavailable) && ctx.Err() == nil {
		c.logger.Warn().Msg("Backend unreachable, retrying once")
		text, err = c.chat(ctx, messages, maxTokens)
	}
	return text, err
}

func (c *Client) chat(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   false,
	}
	if maxTokens > 0 {
		reqBody.Options = &chatOptions{NumPredict: maxTokens}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || (ctx.Err() == nil && strings.Contains(err.Error(), "Client.Timeout")) {
			return "", fmt.Errorf("%w after %s", ErrBackendTimeout, c.config.Timeout)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if chatResp.Error != "" {
		return "", fmt.Errorf("model error: %s", chatResp.Error)
	}

	text := strings.TrimSpace(chatResp.Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug().
		Dur("latency", time.Since(start)).
		Int("chars", len(text)).
		Msg("Chat response received")

	return text, nil
}
