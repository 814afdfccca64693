package tribunal

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiCaller struct {
	models GeminiModels
}

func NewGeminiCaller(ctx context.Context, apiKey string) (*GeminiCaller, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrNoCredentials)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiCaller{models: client.Models}, nil
}

func (g *GeminiCaller) Generate(ctx context.Context, req Request) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = verdictSchema()
	}
	resp, err := g.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini: empty response")
	}
	return resp.Text(), nil
}

func verdictSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"verdict": {
				Type: genai.TypeString,
				Enum: []string{string(HighRisk), string(LowRisk)},
			},
			"confidence": {Type: genai.TypeInteger, Description: "Confidence from 0 to 100."},
			"reasoning":  {Type: genai.TypeString, Description: "Short judicial summary."},
		},
		Required: []string{"verdict", "confidence", "reasoning"},
	}
}
