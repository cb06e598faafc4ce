package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "deepseek/deepseek-chat-v3-0324:free"
)

// OpenRouterConfig configures the OpenRouter provider.
type OpenRouterConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	SiteURL  string // sent as HTTP-Referer
	SiteName string // sent as X-Title
}

// OpenRouter talks to the OpenRouter chat-completions API.
type OpenRouter struct {
	cfg  OpenRouterConfig
	http *http.Client
}

type openRouterRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type openRouterResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewOpenRouter returns an OpenRouter provider. A nil client uses http.DefaultClient.
func NewOpenRouter(cfg OpenRouterConfig, client *http.Client) *OpenRouter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultOpenRouterModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenRouter{cfg: cfg, http: client}
}

func (o *OpenRouter) Name() string { return "openrouter:" + o.cfg.Model }

// Complete sends system followed by history and returns the first choice.
func (o *OpenRouter) Complete(ctx context.Context, system string, history []Message) (string, error) {
	if o.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, history...)

	body, err := json.Marshal(openRouterRequest{Model: o.cfg.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("chat: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	if o.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", o.cfg.SiteURL)
	}
	if o.cfg.SiteName != "" {
		req.Header.Set("X-Title", o.cfg.SiteName)
	}

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat: openrouter request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("chat: read openrouter response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat: openrouter status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out openRouterResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("chat: parse openrouter response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat: openrouter: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat: openrouter returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
