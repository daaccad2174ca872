// Package recommend runs the recommendation flow: store the photo, record the
// request, ask the model and keep the suggestions it returns.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/metrics"
	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/prompt"
	"github.com/spigell/outfit-advisor/internal/store"
)

const maxSuggestionsLimit = 10

var (
	// ErrInvalidRequest wraps every input validation failure.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrImageUnreachable is returned when the photo URL does not answer a HEAD request.
	ErrImageUnreachable = errors.New("image url is not reachable")
	// ErrForbidden is returned when a request refers to another user's upload.
	ErrForbidden = errors.New("upload belongs to another user")
)

// Store is the part of the data layer the flow writes to.
type Store interface {
	StoreImage(ctx context.Context, dataURL string) (string, error)
	GetUploadByID(ctx context.Context, id int64) (*outfit.Upload, error)
	InsertUpload(ctx context.Context, imageURL, userID string) (int64, error)
	InsertParam(ctx context.Context, gender outfit.Gender, clothingType outfit.ClothingType, model string) (int64, error)
	InsertRecommendation(ctx context.Context, paramID, uploadID int64, userID string) (int64, error)
	InsertSuggestion(ctx context.Context, suggestion store.NewSuggestion) (int64, error)
	InsertResults(ctx context.Context, results []outfit.UnstoredResult) ([]int64, error)
}

// Chat asks the model and checks photo URLs.
type Chat interface {
	SendImageURLAndPrompt(ctx context.Context, model, prompt, imageURL string) (string, error)
	IsImageURLValid(ctx context.Context, url string) bool
}

type Config struct {
	DefaultModel string
	// Models restricts the accepted models. Empty accepts any.
	Models         []string
	MaxSuggestions int
}

type Service struct {
	store    Store
	chat     Chat
	cfg      Config
	logger   *zap.Logger
	validate *validator.Validate
}

func New(st Store, ch Chat, cfg Config, log *zap.Logger) *Service {
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = prompt.DefaultMaxSuggestions
	}

	return &Service{
		store:    st,
		chat:     ch,
		cfg:      cfg,
		logger:   logger.Component(log, "recommend"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Request describes one recommendation. Exactly one of UploadID, ImageDataURL
// and ImageURL names the photo.
type Request struct {
	UserID         string              `validate:"required"`
	UploadID       int64               `validate:"gte=0"`
	ImageDataURL   string              `validate:"omitempty,startswith=data:image/"`
	ImageURL       string              `validate:"omitempty,http_url"`
	Gender         outfit.Gender       `validate:"required,oneof=male female"`
	ClothingType   outfit.ClothingType `validate:"required,oneof=top bottom"`
	Model          string
	MaxSuggestions int `validate:"gte=0,lte=10"`
}

// Recommendation is a stored recommendation with its suggestions.
type Recommendation struct {
	ID          int64               `json:"id"`
	ParamID     int64               `json:"param_id"`
	UploadID    int64               `json:"upload_id"`
	ImageURL    string              `json:"image_url"`
	Model       string              `json:"model"`
	Suggestions []outfit.Suggestion `json:"suggestions"`
}

// Recommend stores the photo and the request, asks the model for pairings and
// keeps one suggestion per entry of the reply.
func (s *Service) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	rec, err := s.recommend(ctx, req)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Recommendations.WithLabelValues("ok").Inc()
	return rec, nil
}

func (s *Service) recommend(ctx context.Context, req Request) (*Recommendation, error) {
	model, err := s.checkRequest(req)
	if err != nil {
		return nil, err
	}

	log := logger.WithUser(s.logger, req.UserID).With(zap.String(logger.FieldModel, model))

	imageURL, uploadID, err := s.resolveImage(ctx, req)
	if err != nil {
		return nil, err
	}

	if !s.chat.IsImageURLValid(ctx, imageURL) {
		return nil, fmt.Errorf("%w: %s", ErrImageUnreachable, imageURL)
	}

	if uploadID == 0 {
		if uploadID, err = s.store.InsertUpload(ctx, imageURL, req.UserID); err != nil {
			return nil, fmt.Errorf("insert upload: %w", err)
		}
	}

	paramID, err := s.store.InsertParam(ctx, req.Gender, req.ClothingType, model)
	if err != nil {
		return nil, fmt.Errorf("insert param: %w", err)
	}

	recID, err := s.store.InsertRecommendation(ctx, paramID, uploadID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("insert recommendation: %w", err)
	}
	log = log.With(zap.Int64("recommendation_id", recID))

	text, err := prompt.ForRecommendation(req.ClothingType, req.Gender, s.maxSuggestions(req.MaxSuggestions))
	if err != nil {
		return nil, err
	}

	reply, err := s.chat.SendImageURLAndPrompt(ctx, model, text, imageURL)
	if err != nil {
		return nil, fmt.Errorf("ask model: %w", err)
	}

	drafts, err := outfit.ParseSuggestions(reply)
	if err != nil {
		log.Warn("unusable model reply", zap.Error(err))
		return nil, err
	}

	suggestions := make([]outfit.Suggestion, 0, len(drafts))
	for _, draft := range drafts {
		row := store.NewSuggestion{
			RecommendationID: recID,
			LabelString:      draft.LabelString(),
			StyleName:        draft.StyleName,
			Description:      draft.Description,
		}

		id, err := s.store.InsertSuggestion(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("insert suggestion: %w", err)
		}

		suggestions = append(suggestions, outfit.Suggestion{
			ID:               id,
			RecommendationID: recID,
			LabelString:      row.LabelString,
			StyleName:        row.StyleName,
			Description:      row.Description,
		})
	}

	log.Info("recommendation ready", zap.Int("suggestions", len(suggestions)))

	return &Recommendation{
		ID:          recID,
		ParamID:     paramID,
		UploadID:    uploadID,
		ImageURL:    imageURL,
		Model:       model,
		Suggestions: suggestions,
	}, nil
}

func (s *Service) checkRequest(req Request) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	sources := 0
	for _, set := range []bool{req.UploadID > 0, req.ImageDataURL != "", req.ImageURL != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return "", fmt.Errorf("%w: exactly one of upload id, image data or image url is required", ErrInvalidRequest)
	}

	return s.model(req.Model)
}

// resolveImage returns the photo URL and, for known uploads, the upload id.
func (s *Service) resolveImage(ctx context.Context, req Request) (string, int64, error) {
	switch {
	case req.UploadID > 0:
		upload, err := s.store.GetUploadByID(ctx, req.UploadID)
		if err != nil {
			return "", 0, fmt.Errorf("get upload: %w", err)
		}
		if upload.UserID != "" && upload.UserID != req.UserID {
			return "", 0, ErrForbidden
		}
		return upload.ImageURL, upload.ID, nil
	case req.ImageDataURL != "":
		url, err := s.store.StoreImage(ctx, req.ImageDataURL)
		if err != nil {
			if errors.Is(err, store.ErrInvalidDataURL) {
				return "", 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
			}
			return "", 0, fmt.Errorf("store image: %w", err)
		}
		return url, 0, nil
	default:
		return req.ImageURL, 0, nil
	}
}

func (s *Service) model(requested string) (string, error) {
	model := strings.TrimSpace(requested)
	if model == "" {
		model = s.cfg.DefaultModel
	}
	if model == "" {
		return "", fmt.Errorf("%w: model is required", ErrInvalidRequest)
	}
	if len(s.cfg.Models) > 0 && !slices.Contains(s.cfg.Models, model) {
		return "", fmt.Errorf("%w: model %q is not allowed", ErrInvalidRequest, model)
	}
	return model, nil
}

func (s *Service) maxSuggestions(requested int) int {
	if requested > 0 {
		return min(requested, maxSuggestionsLimit)
	}
	return s.cfg.MaxSuggestions
}

// Models lists the accepted models, default first.
func (s *Service) Models() []string {
	models := make([]string, 0, len(s.cfg.Models)+1)
	if s.cfg.DefaultModel != "" {
		models = append(models, s.cfg.DefaultModel)
	}
	for _, m := range s.cfg.Models {
		if !slices.Contains(models, m) {
			models = append(models, m)
		}
	}
	return models
}
