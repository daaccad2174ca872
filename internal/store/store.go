// Package store reads and writes recommendation data in the hosted database
// and keeps user photos in object storage.
package store

import (
	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/supabase"
)

const (
	// InvalidID is returned by inserts together with the error.
	InvalidID int64 = -1

	DefaultBucket = "image"

	tableResult         = "result"
	tableSuggestion     = "suggestion"
	tableRecommendation = "recommendation"
	tableParam          = "param"
	tableUpload         = "upload"
	tableItem           = "item"
	tableItemToSeries   = "item_to_series"
	tableSeries         = "series"
	tableProfile        = "profile"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = supabase.ErrNotFound

type Store struct {
	client *supabase.Client
	logger *zap.Logger
	// Bucket holds uploaded photos.
	Bucket string
}

func New(client *supabase.Client, log *zap.Logger) *Store {
	return &Store{
		client: client,
		logger: logger.Component(log, "store"),
		Bucket: DefaultBucket,
	}
}

type idRow struct {
	ID int64 `json:"id"`
}

// fail logs err against table and hands it back.
func (s *Store) fail(table, msg string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String(logger.FieldTable, table), zap.Error(err))
	s.logger.Error(msg, fields...)
	return err
}
