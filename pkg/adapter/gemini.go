package adapter

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const DefaultGenerativeModel = "gemini-2.5-flash"

type Gemini interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient calls the Gemini API. The underlying genai client is created
// on the first call, so a missing API key is reported at call time rather
// than at construction.
type GeminiClient struct {
	apiKey          string
	projectID       string
	location        string
	generativeModel string

	mu     sync.Mutex
	client *genai.Client
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		if model != "" {
			g.generativeModel = model
		}
	}
}

// WithVertexAI switches the backend from the Gemini API to Vertex AI
func WithVertexAI(projectID, location string) GeminiOption {
	return func(g *GeminiClient) {
		g.projectID = projectID
		g.location = location
	}
}

func NewGemini(apiKey string, opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		apiKey:          apiKey,
		generativeModel: DefaultGenerativeModel,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Model returns the generative model name used for requests
func (g *GeminiClient) Model() string {
	return g.generativeModel
}

func (g *GeminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.projectID != "" {
		cfg = &genai.ClientConfig{
			Project:  g.projectID,
			Location: g.location,
			Backend:  genai.BackendVertexAI,
		}
	} else if g.apiKey == "" {
		return nil, goerr.New("gemini API key is not set", goerr.V("env", "GOOGLE_API_KEY"))
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}
	g.client = client

	return client, nil
}

func (g *GeminiClient) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := g.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content", goerr.V("model", g.generativeModel))
	}
	return resp, nil
}

// ResponseText concatenates the text parts of the first candidate
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text += part.Text
		}
	}
	return text
}

// FinishReason reports why generation stopped, for diagnosing empty responses
func FinishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return "NO_CANDIDATE"
	}
	if resp.Candidates[0].FinishReason == "" {
		return "UNKNOWN"
	}
	return string(resp.Candidates[0].FinishReason)
}
