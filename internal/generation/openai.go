package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/copyadhq/copyad/internal/config"
	"go.uber.org/zap"
)

const providerOpenAI = "openai"

type openAIClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	log       *zap.Logger
	client    *http.Client
}

// NewOpenAIProvider builds a Provider against any OpenAI-compatible
// chat completions endpoint. The timeout bounds the whole request so a
// stalled upstream cannot hold a handler open indefinitely.
func NewOpenAIProvider(cfg config.GenerationConfig, log *zap.Logger) Provider {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &openAIClient{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       log.Named("generation.openai"),
		client:    &http.Client{Timeout: timeout},
	}
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: provider api key is not configured", ErrGenerationFailed)
	}

	body := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an expert advertising copywriter."},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: c.maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Warn("completion request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("completion request rejected", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: upstream status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}

	copyText := strings.TrimSpace(completion.Choices[0].Message.Content)
	if copyText == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}

	model := completion.Model
	if model == "" {
		model = c.model
	}
	return &Result{Copy: copyText, Model: model, Provider: providerOpenAI}, nil
}
