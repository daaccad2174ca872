package chat

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"google.golang.org/genai"
)

const (
	ProviderGemini   = "gemini"
	defaultImageMIME = "image/jpeg"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator calls the Gemini API, passing the photo by URI.
type GeminiGenerator struct {
	models contentGenerator
}

func NewGemini(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{models: client.Models}, nil
}

func (g *GeminiGenerator) Provider() string { return ProviderGemini }

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt, imageURL string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if imageURL != "" {
		parts = append(parts, genai.NewPartFromURI(imageURL, mimeTypeFor(imageURL)))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// mimeTypeFor guesses the image type from the URL extension.
func mimeTypeFor(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultImageMIME
	}

	typ := mime.TypeByExtension(strings.ToLower(path.Ext(u.Path)))
	if typ == "" {
		return defaultImageMIME
	}
	if mediaType, _, err := mime.ParseMediaType(typ); err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}

	return defaultImageMIME
}
