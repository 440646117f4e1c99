package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relay/pkg/models"
	"relay/pkg/repository"

	"go.uber.org/zap"
)

var (
	ErrNoMessages    = errors.New("no messages in request")
	ErrMalformedBody = errors.New("malformed request body")
	ErrStorage       = errors.New("status store commit failed")
)

// Publisher receives every accepted status update as it is processed.
type Publisher interface {
	PublishWebhookEvent(models.Notification)
}

type WebhookService interface {
	// Ingest processes one gateway batch. Accepted events are published as they
	// are seen and then committed together; a failed commit does not retract
	// what was already published.
	Ingest(ctx context.Context, events []models.StatusEvent) error
}

type webhookService struct {
	repo     repository.StatusRepository
	bus      Publisher
	cache    *StatusListCache
	sentinel string
	now      func() time.Time
	logger   *zap.Logger
}

func NewWebhookService(repo repository.StatusRepository, bus Publisher, cache *StatusListCache, sentinel string, logger *zap.Logger) WebhookService {
	return &webhookService{
		repo:     repo,
		bus:      bus,
		cache:    orNewListCache(cache),
		sentinel: sentinel,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "webhook")),
	}
}

func (s *webhookService) Ingest(ctx context.Context, events []models.StatusEvent) error {
	if len(events) == 0 {
		return ErrNoMessages
	}

	var staged []models.Record
	for _, e := range events {
		if e.AuthorName != s.sentinel {
			continue
		}

		s.bus.PublishWebhookEvent(models.NewNotification(e))
		staged = append(staged, models.NewRecord(e, s.now()))

		s.logger.Info("status update",
			zap.String("message_id", e.MessageID),
			zap.String("status", e.Status),
			zap.Any("date_time", e.DateTime),
			zap.String("contact", models.ContactName(e.Contact)),
		)
	}

	if len(staged) == 0 {
		return nil
	}

	if err := s.repo.UpsertBatch(ctx, staged); err != nil {
		s.logger.Error("commit status batch", zap.Int("count", len(staged)), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := s.cache.invalidate(ctx); err != nil {
		s.logger.Warn("invalidate status cache", zap.Error(err))
	}
	return nil
}
