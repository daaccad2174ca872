package recommend

import (
	"context"
	"fmt"

	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/prompt"
)

// SuggestRequest asks for pairings without recording anything.
type SuggestRequest struct {
	ImageURL       string              `validate:"required,http_url"`
	Gender         outfit.Gender       `validate:"required,oneof=male female"`
	ClothingType   outfit.ClothingType `validate:"required,oneof=top bottom"`
	Model          string
	MaxSuggestions int `validate:"gte=0"`
}

// Suggest runs the recommendation prompt against a photo URL and returns the
// parsed drafts. The photo is checked like in Recommend; nothing is stored.
func (s *Service) Suggest(ctx context.Context, req SuggestRequest) ([]outfit.Draft, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if !s.chat.IsImageURLValid(ctx, req.ImageURL) {
		return nil, fmt.Errorf("%w: %s", ErrImageUnreachable, req.ImageURL)
	}

	text, err := prompt.ForRecommendation(req.ClothingType, req.Gender, s.maxSuggestions(req.MaxSuggestions))
	if err != nil {
		return nil, err
	}

	return s.describe(ctx, SearchRequest{Model: req.Model}, text, req.ImageURL)
}
