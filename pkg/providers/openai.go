package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// OpenAIConfig configures the OpenAI chat-completions adapter.
type OpenAIConfig struct {
	// BaseURL is the API root. Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier. Default: "gpt-4o-mini"
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Default: "OPENAI_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds each request round trip. Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxTokensFree is the completion ceiling when damping is zero.
	// Default: 450
	MaxTokensFree int `yaml:"max_tokens_free"`

	// MaxTokensDampen is the completion ceiling under damping.
	// Default: 140
	MaxTokensDampen int `yaml:"max_tokens_dampen"`

	// MaxIdleConns and MaxIdleConnsPerHost size the connection pool.
	MaxIdleConns        int `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// DefaultOpenAIConfig returns the standard adapter configuration.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:             "https://api.openai.com/v1",
		Model:               "gpt-4o-mini",
		APIKeyEnv:           "OPENAI_API_KEY",
		Timeout:             30 * time.Second,
		MaxTokensFree:       450,
		MaxTokensDampen:     140,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
	}
}

// OpenAI is a chat-completions adapter that enforces governance at the
// prompt boundary: the system prompt restricts the model to the supplied
// evidence, and the completion ceiling drops when damping is applied.
type OpenAI struct {
	config OpenAIConfig
	client *http.Client
}

// NewOpenAI creates the adapter with a pooled HTTP client. Zero-valued
// config fields fall back to the defaults.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	def := DefaultOpenAIConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = def.APIKeyEnv
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxTokensFree <= 0 {
		cfg.MaxTokensFree = def.MaxTokensFree
	}
	if cfg.MaxTokensDampen <= 0 {
		cfg.MaxTokensDampen = def.MaxTokensDampen
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = def.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &OpenAI{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// Name implements Answerer.
func (o *OpenAI) Name() string { return "openai" }

const governedSystemPrompt = "You are a careful assistant.\n" +
	"You MUST use ONLY the provided evidence.\n" +
	"Do NOT use outside knowledge.\n" +
	"Do NOT guess.\n" +
	"If evidence is missing or insufficient, say so and request what is needed.\n"

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Answer implements Answerer.
func (o *OpenAI) Answer(ctx context.Context, userText string, evidence []string, damping float64) (*Answer, error) {
	apiKey := os.Getenv(o.config.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %s is not set", o.config.APIKeyEnv)
	}

	maxTokens := o.config.MaxTokensFree
	govMode := "FREE"
	if damping != 0 {
		maxTokens = o.config.MaxTokensDampen
		govMode = fmt.Sprintf("DAMPEN (damping=%.3f)", damping)
	}

	evidenceBlock := "(none)"
	if len(evidence) > 0 {
		var b bytes.Buffer
		for i, e := range evidence {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, e)
		}
		evidenceBlock = b.String()
	}

	user := fmt.Sprintf("Governance mode: %s\n\nEvidence:\n%s\nRequest: %s\n\n"+
		"Answer using only the numbered evidence and cite items as [1], [2], ...",
		govMode, evidenceBlock, userText)

	body, err := json.Marshal(chatRequest{
		Model: o.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: governedSystemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.0,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("openai: decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai: api error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai: response contains no choices")
	}

	choice := parsed.Choices[0]
	return &Answer{
		Text:      choice.Message.Content,
		Citations: append([]string{}, evidence...),
		Meta: map[string]string{
			"model":         parsed.Model,
			"finish_reason": choice.FinishReason,
			"total_tokens":  strconv.Itoa(parsed.Usage.TotalTokens),
		},
	}, nil
}
