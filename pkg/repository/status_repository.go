package repository

import (
	"context"
	"errors"

	"relay/pkg/models"
)

var ErrNotFound = errors.New("status record not found")

// StatusRepository stores the last known status per message id.
type StatusRepository interface {
	// UpsertBatch writes all records or none. Later records win over earlier
	// ones with the same MessageID.
	UpsertBatch(ctx context.Context, records []models.Record) error
	ReadAll(ctx context.Context) ([]models.Record, error)
	FindByID(ctx context.Context, messageID string) (*models.Record, error)
}
