package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-3-flash-preview"

// GeminiClient implements Client on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient connects with the configured credential.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends one prompt. Structured requests ask for JSON constrained by
// the schema.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	var gc *genai.GenerateContentConfig
	if req.Schema != nil {
		gc = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   toGenaiSchema(req.Schema),
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", req.Operation, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s: %w", req.Operation, ErrEmptyResponse)
	}
	return text, nil
}

func toGenaiSchema(s *Schema) *genai.Schema {
	out := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(s.Properties)),
		Required:   make([]string, 0, len(s.Properties)),
	}
	for _, p := range s.Properties {
		switch p.Kind {
		case KindStringList:
			out.Properties[p.Name] = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
		case KindString:
			out.Properties[p.Name] = &genai.Schema{Type: genai.TypeString}
		default:
			out.Properties[p.Name] = &genai.Schema{Type: genai.TypeString}
		}
		out.Required = append(out.Required, p.Name)
	}
	return out
}
