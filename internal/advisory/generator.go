package advisory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// DefaultModel is the generative model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// Request is one text-generation call. TopP is optional.
type Request struct {
	Model       string
	Prompt      string
	Temperature float32
	TopP        *float32
}

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GenAIGenerator calls the Gemini API through the google genai SDK.
type GenAIGenerator struct {
	client *genai.Client
}

// GenAIOptions tune the SDK client. Zero values use SDK defaults.
type GenAIOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewGenAIGenerator builds a generator authenticated with apiKey.
func NewGenAIGenerator(ctx context.Context, apiKey string, opts GenAIOptions) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
		TopP:        req.TopP,
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}
