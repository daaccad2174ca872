package recommend

import (
	"context"
	"fmt"

	"github.com/spigell/outfit-advisor/internal/outfit"
)

// ItemMatch is a catalogue item found for a suggestion.
type ItemMatch struct {
	ItemID   string  `json:"item_id"`
	Distance float64 `json:"distance"`
}

// AttachResults stores the matches of a suggestion and returns the result ids.
func (s *Service) AttachResults(ctx context.Context, suggestionID int64, matches []ItemMatch) ([]int64, error) {
	if suggestionID <= 0 {
		return nil, fmt.Errorf("%w: suggestion id is required", ErrInvalidRequest)
	}

	rows := make([]outfit.UnstoredResult, 0, len(matches))
	for i, m := range matches {
		row := outfit.UnstoredResult{
			SuggestionID: suggestionID,
			ItemID:       m.ItemID,
			Distance:     m.Distance,
		}
		if err := s.validate.Struct(row); err != nil {
			return nil, fmt.Errorf("%w: match %d: %w", ErrInvalidRequest, i, err)
		}
		rows = append(rows, row)
	}

	ids, err := s.store.InsertResults(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("insert results: %w", err)
	}

	return ids, nil
}
