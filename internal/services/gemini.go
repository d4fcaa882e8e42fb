package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// maxEmbedInputLength keeps embedding input under the model's token window.
const maxEmbedInputLength = 40000

type geminiClient struct {
	client *genai.Client
	cfg    ModelConfig
	logger *zap.Logger
}

// NewGeminiClient creates a ModelClient backed by the Gemini API.
// cfg.Endpoint, when set, overrides the API base URL.
func NewGeminiClient(ctx context.Context, cfg ModelConfig, log *zap.Logger) (ModelClient, error) {
	cfg.Provider = ProviderGemini
	cfg = cfg.withDefaults()

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := newGenAIClient(ctx, cfg.APIKey, cfg.Endpoint, nil)
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		client: client,
		cfg:    cfg,
		logger: log,
	}, nil
}

func newGenAIClient(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// Complete implements ModelClient.
func (g *geminiClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	temperature := float32(g.cfg.Temperature)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   int32(g.cfg.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt.User), config)
	if err != nil {
		g.logger.Error("❌ Gemini API error", zap.Error(err), zap.String("model", g.cfg.Model))
		return "", g.classifyError(err)
	}

	if resp == nil {
		return "", &ModelCallError{Kind: ModelErrEmptyAnswer, Provider: ProviderGemini}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ModelCallError{Kind: ModelErrEmptyAnswer, Provider: ProviderGemini}
	}

	g.logger.Debug("📊 Gemini answer received", zap.Int("answer_length", len(text)))

	return text, nil
}

func (g *geminiClient) classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ModelCallError{
			Kind:       ModelErrStatus,
			Provider:   ProviderGemini,
			StatusCode: apiErr.Code,
			Body:       redactSecret(apiErr.Message, g.cfg.APIKey),
		}
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ModelCallError{
			Kind:       ModelErrStatus,
			Provider:   ProviderGemini,
			StatusCode: apiErrPtr.Code,
			Body:       redactSecret(apiErrPtr.Message, g.cfg.APIKey),
		}
	}

	return &ModelCallError{
		Kind:     ModelErrTransport,
		Provider: ProviderGemini,
		Err:      err,
		secret:   g.cfg.APIKey,
	}
}

// Embedder turns text into a dense vector for the job description index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type geminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an Embedder using a Gemini embedding model.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (Embedder, error) {
	return newGeminiEmbedder(ctx, apiKey, model, "", nil)
}

func newGeminiEmbedder(ctx context.Context, apiKey, model, baseURL string, httpClient *http.Client) (Embedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultEmbedModel
	}

	client, err := newGenAIClient(ctx, apiKey, baseURL, httpClient)
	if err != nil {
		return nil, err
	}

	return &geminiEmbedder{client: client, model: model}, nil
}

// Embed implements Embedder.
func (e *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if runes := []rune(text); len(runes) > maxEmbedInputLength {
		text = string(runes[:maxEmbedInputLength])
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
