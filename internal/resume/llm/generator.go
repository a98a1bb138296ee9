package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"google.golang.org/genai"
)

// Generator sends one prompt to a generative model and returns its text output
type Generator interface {
	Generate(ctx context.Context, prompt string, jsonMode bool) (string, error)
}

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator calls the Gemini API. It is safe for concurrent use.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates the client once; httpClient may be nil
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*GeminiGenerator, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,

		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

// Model returns the configured model id
func (g *GeminiGenerator) Model() string {
	return g.model
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var cfg *genai.GenerateContentConfig
	if jsonMode {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", errors.New("model returned no candidates")
	}

	return resp.Text(), nil
}
