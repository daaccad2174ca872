package recommend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/prompt"
)

// SearchRequest describes a garment to look up, either by photo or by words.
type SearchRequest struct {
	ImageURL     string              `validate:"omitempty,http_url"`
	Text         string              `validate:"omitempty,max=2000"`
	Gender       outfit.Gender       `validate:"required,oneof=male female"`
	ClothingType outfit.ClothingType `validate:"required,oneof=top bottom"`
	Model        string
}

// DescribeImage asks the model for a structured description of the garment in
// the photo. Nothing is stored.
func (s *Service) DescribeImage(ctx context.Context, req SearchRequest) ([]outfit.Draft, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.ImageURL == "" {
		return nil, fmt.Errorf("%w: image url is required", ErrInvalidRequest)
	}

	if !s.chat.IsImageURLValid(ctx, req.ImageURL) {
		return nil, fmt.Errorf("%w: %s", ErrImageUnreachable, req.ImageURL)
	}

	text, err := prompt.ForImageSearch(req.ClothingType, req.Gender)
	if err != nil {
		return nil, err
	}

	return s.describe(ctx, req, text, req.ImageURL)
}

// DescribeText rewrites a free-text request into the structured item format.
// The photo, when given, is sent along as context.
func (s *Service) DescribeText(ctx context.Context, req SearchRequest) ([]outfit.Draft, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	text, err := prompt.ForTextSearch(req.ClothingType, req.Gender, req.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return s.describe(ctx, req, text, req.ImageURL)
}

func (s *Service) describe(ctx context.Context, req SearchRequest, text, imageURL string) ([]outfit.Draft, error) {
	model, err := s.model(req.Model)
	if err != nil {
		return nil, err
	}

	reply, err := s.chat.SendImageURLAndPrompt(ctx, model, text, imageURL)
	if err != nil {
		return nil, fmt.Errorf("ask model: %w", err)
	}

	drafts, err := outfit.ParseSuggestions(reply)
	if err != nil {
		s.logger.Warn("unusable model reply", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	return drafts, nil
}
