package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/outfit"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

const imageCacheSeconds = 3600

// ErrInvalidDataURL is returned for images that are not base64 data URLs.
var ErrInvalidDataURL = errors.New("invalid image data url")

// StoreImage uploads a base64 data URL (data:image/png;base64,...) as a new
// object and returns its public URL.
func (s *Store) StoreImage(ctx context.Context, dataURL string) (string, error) {
	data, contentType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", s.fail(s.Bucket, "error decoding image", err)
	}

	name := "image-" + uuid.NewString()
	opts := supabase.UploadOptions{
		ContentType:  contentType,
		CacheControl: imageCacheSeconds,
		Upsert:       false,
	}
	if err := s.client.Storage.Upload(ctx, s.Bucket, name, data, opts); err != nil {
		return "", s.fail(s.Bucket, "error uploading image", err, zap.String("object", name))
	}

	url := s.client.Storage.PublicURL(s.Bucket, name)
	s.logger.Debug("image stored", zap.String("object", name), zap.Int("bytes", len(data)))

	return url, nil
}

func decodeDataURL(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(dataURL), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", ErrInvalidDataURL
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("%w: unsupported content type %q", ErrInvalidDataURL, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrInvalidDataURL)
	}

	return data, contentType, nil
}

// InsertResults stores matched items and returns their ids in insertion order.
func (s *Store) InsertResults(ctx context.Context, results []outfit.UnstoredResult) ([]int64, error) {
	if len(results) == 0 {
		return []int64{}, nil
	}

	var rows []idRow
	if err := s.client.From(tableResult).Select("id").Insert(ctx, results, &rows); err != nil {
		return nil, s.fail(tableResult, "error inserting results", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

type NewSuggestion struct {
	RecommendationID int64  `json:"recommendation_id"`
	LabelString      string `json:"label_string"`
	StyleName        string `json:"style_name"`
	Description      string `json:"description"`
}

func (s *Store) InsertSuggestion(ctx context.Context, suggestion NewSuggestion) (int64, error) {
	return s.insertOne(ctx, tableSuggestion, suggestion)
}

func (s *Store) InsertRecommendation(ctx context.Context, paramID, uploadID int64, userID string) (int64, error) {
	return s.insertOne(ctx, tableRecommendation, map[string]any{
		"param_id":  paramID,
		"upload_id": uploadID,
		"user_id":   userID,
	})
}

func (s *Store) InsertParam(ctx context.Context, gender outfit.Gender, clothingType outfit.ClothingType, model string) (int64, error) {
	return s.insertOne(ctx, tableParam, map[string]any{
		"gender":        gender,
		"clothing_type": clothingType,
		"model":         model,
	})
}

func (s *Store) InsertUpload(ctx context.Context, imageURL, userID string) (int64, error) {
	return s.insertOne(ctx, tableUpload, map[string]any{
		"image_url": imageURL,
		"user_id":   userID,
	})
}

// insertOne inserts a single row and returns its id, or InvalidID with the error.
func (s *Store) insertOne(ctx context.Context, table string, row any) (int64, error) {
	var inserted []idRow
	if err := s.client.From(table).Select("id").Insert(ctx, []any{row}, &inserted); err != nil {
		return InvalidID, s.fail(table, "error inserting row", err)
	}
	if len(inserted) == 0 {
		return InvalidID, s.fail(table, "error inserting row", fmt.Errorf("insert into %s returned no rows", table))
	}

	logger.WithFields(s.logger, zap.String(logger.FieldTable, table)).Debug("row inserted", zap.Int64("id", inserted[0].ID))

	return inserted[0].ID, nil
}
