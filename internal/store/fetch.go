package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/outfit"
)

func (s *Store) GetResults(ctx context.Context, suggestionID int64) ([]outfit.Result, error) {
	var results []outfit.Result
	err := s.client.From(tableResult).Select("*").Eq("suggestion_id", suggestionID).Get(ctx, &results)
	if err != nil {
		return nil, s.fail(tableResult, "error fetching results", err, zap.Int64("suggestion_id", suggestionID))
	}
	return nonNil(results), nil
}

func (s *Store) GetSuggestions(ctx context.Context, recommendationID int64) ([]outfit.Suggestion, error) {
	var suggestions []outfit.Suggestion
	err := s.client.From(tableSuggestion).Select("*").Eq("recommendation_id", recommendationID).Get(ctx, &suggestions)
	if err != nil {
		return nil, s.fail(tableSuggestion, "error fetching suggestions", err, zap.Int64("recommendation_id", recommendationID))
	}
	return nonNil(suggestions), nil
}

func (s *Store) GetSuggestionByID(ctx context.Context, id int64) (*outfit.Suggestion, error) {
	var suggestion outfit.Suggestion
	if err := s.client.From(tableSuggestion).Select("*").Eq("id", id).Single().Get(ctx, &suggestion); err != nil {
		return nil, s.fail(tableSuggestion, "error fetching suggestion", err, zap.Int64("id", id))
	}
	return &suggestion, nil
}

func (s *Store) GetRecommendationByID(ctx context.Context, id int64) (*outfit.Recommendation, error) {
	var rec outfit.Recommendation
	if err := s.client.From(tableRecommendation).Select("*").Eq("id", id).Single().Get(ctx, &rec); err != nil {
		return nil, s.fail(tableRecommendation, "error fetching recommendation", err, zap.Int64("id", id))
	}
	return &rec, nil
}

func (s *Store) GetParamByID(ctx context.Context, id int64) (*outfit.Param, error) {
	var param outfit.Param
	if err := s.client.From(tableParam).Select("*").Eq("id", id).Single().Get(ctx, &param); err != nil {
		return nil, s.fail(tableParam, "error fetching param", err, zap.Int64("id", id))
	}
	return &param, nil
}

func (s *Store) GetUploadByID(ctx context.Context, id int64) (*outfit.Upload, error) {
	var upload outfit.Upload
	if err := s.client.From(tableUpload).Select("*").Eq("id", id).Single().Get(ctx, &upload); err != nil {
		return nil, s.fail(tableUpload, "error fetching upload", err, zap.Int64("id", id))
	}
	return &upload, nil
}

func (s *Store) GetItemByID(ctx context.Context, id string) (*outfit.Item, error) {
	var item outfit.Item
	if err := s.client.From(tableItem).Select("*").Eq("id", id).Single().Get(ctx, &item); err != nil {
		return nil, s.fail(tableItem, "error fetching item", err, zap.String("id", id))
	}
	return &item, nil
}

// GetItemsByIDs returns the items found among ids, in database order.
func (s *Store) GetItemsByIDs(ctx context.Context, ids []string) ([]outfit.Item, error) {
	if len(ids) == 0 {
		return []outfit.Item{}, nil
	}

	var items []outfit.Item
	if err := s.client.From(tableItem).Select("*").In("id", ids).Get(ctx, &items); err != nil {
		return nil, s.fail(tableItem, "error fetching items", err, zap.Strings("ids", ids))
	}
	return nonNil(items), nil
}

// GetSeriesIDByItemID returns the first series the item belongs to.
func (s *Store) GetSeriesIDByItemID(ctx context.Context, itemID string) (string, error) {
	var rows []struct {
		SeriesID string `json:"series_id"`
	}
	if err := s.client.From(tableItemToSeries).Select("series_id").Eq("item_id", itemID).Get(ctx, &rows); err != nil {
		return "", s.fail(tableItemToSeries, "error fetching series id", err, zap.String("item_id", itemID))
	}
	if len(rows) == 0 || rows[0].SeriesID == "" {
		return "", fmt.Errorf("series of item %s: %w", itemID, ErrNotFound)
	}
	return rows[0].SeriesID, nil
}

// GetSeriesIDsByItemIDs resolves the series of every item. Items without a
// series are skipped; the result is deduplicated in order of first appearance.
func (s *Store) GetSeriesIDsByItemIDs(ctx context.Context, itemIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(itemIDs))
	seriesIDs := make([]string, 0, len(itemIDs))

	for _, itemID := range itemIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seriesID, err := s.GetSeriesIDByItemID(ctx, itemID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.logger.Warn("skipping item without series", zap.String("item_id", itemID), zap.Error(err))
			}
			continue
		}

		if _, ok := seen[seriesID]; ok {
			continue
		}
		seen[seriesID] = struct{}{}
		seriesIDs = append(seriesIDs, seriesID)
	}

	return seriesIDs, nil
}

func (s *Store) GetSeriesByID(ctx context.Context, seriesID string) (*outfit.Series, error) {
	var series outfit.Series
	if err := s.client.From(tableSeries).Select("*").Eq("series_id", seriesID).Single().Get(ctx, &series); err != nil {
		return nil, s.fail(tableSeries, "error fetching series", err, zap.String("series_id", seriesID))
	}
	return &series, nil
}

func (s *Store) GetItemIDsBySeriesID(ctx context.Context, seriesID string) ([]string, error) {
	var rows []struct {
		ItemID string `json:"item_id"`
	}
	if err := s.client.From(tableItemToSeries).Select("item_id").Eq("series_id", seriesID).Get(ctx, &rows); err != nil {
		return nil, s.fail(tableItemToSeries, "error fetching series items", err, zap.String("series_id", seriesID))
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ItemID)
	}
	return ids, nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
