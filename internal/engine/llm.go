package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// LLM wraps the GenAI client behind the provider enum from Config.
type LLM struct {
	client *genai.Client
	model  string
}

// NewLLM creates the generative-model client for the configured provider.
// Provider selection happens here, once, at construction time.
func NewLLM(ctx context.Context, c Config) (*LLM, error) {
	cc := &genai.ClientConfig{}

	switch c.LLMProvider {
	case ProviderGemini, "":
		if strings.TrimSpace(c.LLMAPIKey) == "" {
			return nil, errors.New("LLM API key is required for the gemini provider")
		}
		cc.APIKey = c.LLMAPIKey
		cc.Backend = genai.BackendGeminiAPI
	case ProviderVertex:
		// Vertex resolves project/location from the environment's ADC.
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(c.LLMModel)
	if model == "" {
		model = defaultModel
	}

	return &LLM{client: client, model: model}, nil
}

// Model returns the configured model name.
func (l *LLM) Model() string {
	if l == nil {
		return ""
	}
	return l.model
}

// Generate sends the conversation to the model and returns the raw response.
// Counted in metrics; retried by the caller's workflow layer, not here.
func (l *LLM) Generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("llm client is not initialized")
	}
	IncrLLMCalls()
	resp, err := l.client.Models.GenerateContent(ctx, l.model, contents, config)
	if err != nil {
		IncrLLMErrors()
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return resp, nil
}
