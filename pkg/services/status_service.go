package services

import (
	"context"

	"relay/pkg/models"
	"relay/pkg/repository"

	"go.uber.org/zap"
)

// StatusService is the read side used by the UI to reconcile after reconnecting.
type StatusService interface {
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, messageID string) (*models.Record, error)
}

type statusService struct {
	repo   repository.StatusRepository
	cache  *StatusListCache
	logger *zap.Logger
}

func NewStatusService(repo repository.StatusRepository, cache *StatusListCache, logger *zap.Logger) StatusService {
	return &statusService{
		repo:   repo,
		cache:  orNewListCache(cache),
		logger: logger.With(zap.String("component", "statuses")),
	}
}

func (s *statusService) List(ctx context.Context) ([]models.Record, error) {
	if cached, ok := s.cache.load(ctx); ok {
		return cached, nil
	}

	gen := s.cache.generation()
	records, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := s.cache.fill(ctx, gen, records)
	if err != nil {
		s.logger.Warn("fill status cache", zap.Error(err))
	} else if !stored {
		s.logger.Debug("status cache fill skipped after a newer commit")
	}
	return records, nil
}

func (s *statusService) Get(ctx context.Context, messageID string) (*models.Record, error) {
	return s.repo.FindByID(ctx, messageID)
}
