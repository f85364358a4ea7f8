package classifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiClassifier struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

func NewGeminiClassifier(ctx context.Context, apiKey, model string, temperature float64, logger *zap.Logger) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClassifier{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		logger:      logger,
	}, nil
}

func (c *GeminiClassifier) Classify(ctx context.Context, text, agentID string) (*Response, error) {
	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
	if err != nil {
		c.logger.Error("Failed to get Gemini response",
			zap.Error(err),
			zap.String("agent_id", agentID))
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	out := res.Text()
	if out == "" {
		return nil, errors.New("gemini returned empty text")
	}
	return encodedResult(out)
}
