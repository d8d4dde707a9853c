// Package openai provides a chat-completions translation provider.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/provider/resilience"
	"github.com/slanglate/slanglate/internal/translate"
)

const (
	// ProviderName identifies this translation provider.
	ProviderName = "openai"

	// DefaultBaseURL is the OpenAI API base URL.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultModel is the chat model used for translations.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// maxCompletionTokens bounds the translation output length.
	maxCompletionTokens = 300

	// temperature keeps slang output varied without drifting off task.
	temperature = 0.7
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the OpenAI API).
	BaseURL string

	// Model overrides DefaultModel (optional).
	Model string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 30s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenAI chat-completions translation provider.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var _ translate.Provider = (*Client)(nil)

// NewClient creates a new OpenAI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Translate converts text in the direction given by the request mode.
func (c *Client) Translate(ctx context.Context, req translate.Request) (string, error) {
	chatReq := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Mode)},
			{Role: "user", Content: req.Text},
		},
		MaxTokens:   maxCompletionTokens,
		Temperature: temperature,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug().
		Str("mode", string(req.Mode)).
		Int("text_len", len(req.Text)).
		Msg("requesting translation from OpenAI")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling translation provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}

	translated := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("provider returned an empty translation")
	}

	c.logger.Debug().
		Int("total_tokens", chatResp.Usage.TotalTokens).
		Str("finish_reason", chatResp.Choices[0].FinishReason).
		Msg("received translation from OpenAI")

	return translated, nil
}

// handleErrorResponse maps OpenAI error responses to descriptive errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("provider returned status %d", statusCode)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("provider rejected credentials: %s", apiErr.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("provider rate limit exceeded: %s", apiErr.Error.Message)
	default:
		return fmt.Errorf("provider error (status %d): %s", statusCode, apiErr.Error.Message)
	}
}
