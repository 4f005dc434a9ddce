package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/lanternworks/scopeline/internal/config"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient implements Completer against the Anthropic Messages API.
type AnthropicClient struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
}

// AnthropicOpts holds parameters for creating an AnthropicClient.
type AnthropicOpts struct {
	Config  config.AnthropicConfig
	BaseURL string // overrides the API endpoint, for tests
}

// NewAnthropicClient creates an Anthropic Messages API client.
func NewAnthropicClient(opts AnthropicOpts) (*AnthropicClient, error) {
	if opts.Config.APIKey == "" {
		return nil, fmt.Errorf("llm: anthropic api key is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &AnthropicClient{
		apiKey:    opts.Config.APIKey,
		model:     opts.Config.Model,
		maxTokens: opts.Config.MaxTokens,
		baseURL:   baseURL,
		client: &http.Client{
			Timeout: time.Duration(opts.Config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one Messages API request and returns the concatenated
// text blocks of the response.
func (c *AnthropicClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, apiMessage{Role: m.Role, Content: m.Content})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 0
		if v := resp.Header.Get("Retry-After"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				retryAfter = n
			}
		}
		return "", &RateLimitedError{RetryAfter: retryAfter}
	case resp.StatusCode == 529:
		return "", &OverloadedError{}
	case resp.StatusCode != http.StatusOK:
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("llm: api error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("llm: api error %d", resp.StatusCode)
	}

	var msg messagesResponse
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("llm: no text content in response")
	}
	return text, nil
}
