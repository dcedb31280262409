package services

import (
	"context"
	"errors"

	"github.com/kunkakamikasa/dramini-api/internal/model"
	"github.com/kunkakamikasa/dramini-api/internal/repository"
)

type DramaService struct {
	Dramas *repository.DramaRepository
}

func NewDramaService(dramas *repository.DramaRepository) *DramaService {
	return &DramaService{Dramas: dramas}
}

func (s *DramaService) List(ctx context.Context) ([]model.Drama, error) {
	return s.Dramas.ListDramas(ctx)
}

func (s *DramaService) GetByID(ctx context.Context, dramaID int64) (*model.Drama, error) {
	d, err := s.Dramas.GetDramaByID(ctx, dramaID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("drama not found")
	}
	return d, nil
}

func (s *DramaService) ListEpisodes(ctx context.Context, dramaID int64) ([]model.Episode, error) {
	d, err := s.Dramas.GetDramaByID(ctx, dramaID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New("drama not found")
	}
	return s.Dramas.ListEpisodes(ctx, dramaID)
}
