package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/kunkakamikasa/dramini-api/internal/repository"
)

var eventKeyRegex = regexp.MustCompile(`^[a-z0-9_.\-]{1,64}$`)

// AnalyticsService is a fire-and-forget event counter sink.
type AnalyticsService struct {
	Repo *repository.AnalyticsRepository
}

func NewAnalyticsService(repo *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{Repo: repo}
}

func (s *AnalyticsService) Track(ctx context.Context, eventKey string) error {
	if !eventKeyRegex.MatchString(eventKey) {
		return errors.New("invalid event key")
	}
	return s.Repo.Increment(ctx, eventKey)
}

func (s *AnalyticsService) ListCounters(ctx context.Context) ([]repository.AnalyticsCounter, error) {
	return s.Repo.ListCounters(ctx)
}
