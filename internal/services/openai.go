package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

type openAIClient struct {
	cfg        ModelConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewOpenAIClient creates a client for an OpenAI-compatible chat completions endpoint.
// httpClient may be nil; the per-call timeout comes from cfg.Timeout.
func NewOpenAIClient(cfg ModelConfig, httpClient *http.Client, log *zap.Logger) (ModelClient, error) {
	cfg.Provider = ProviderOpenAI
	cfg = cfg.withDefaults()

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &openAIClient{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}, nil
}

// Complete implements ModelClient.
func (c *openAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.transportError(err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", c.transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("openai returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("model", c.cfg.Model),
		)
		return "", &ModelCallError{
			Kind:       ModelErrStatus,
			Provider:   ProviderOpenAI,
			StatusCode: resp.StatusCode,
			Body:       redactSecret(string(respBytes), c.cfg.APIKey),
		}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return "", &ModelCallError{
			Kind:     ModelErrEmptyAnswer,
			Provider: ProviderOpenAI,
			Body:     redactSecret(string(respBytes), c.cfg.APIKey),
			Err:      fmt.Errorf("failed to decode chat response: %w", err),
		}
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", &ModelCallError{Kind: ModelErrEmptyAnswer, Provider: ProviderOpenAI}
	}

	c.logger.Debug("openai answer received",
		zap.Int("answer_length", len(chatResp.Choices[0].Message.Content)),
		zap.String("finish_reason", chatResp.Choices[0].FinishReason),
	)

	return chatResp.Choices[0].Message.Content, nil
}

func (c *openAIClient) transportError(err error) error {
	return &ModelCallError{
		Kind:     ModelErrTransport,
		Provider: ProviderOpenAI,
		Err:      err,
		secret:   c.cfg.APIKey,
	}
}
