package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// TestService implements catalog CRUD.
type TestService struct {
	repo   ports.TestRepository
	logger zerolog.Logger
}

func NewTestService(repo ports.TestRepository, logger zerolog.Logger) *TestService {
	return &TestService{repo: repo, logger: logger}
}

func (s *TestService) List(ctx context.Context) ([]domain.Test, error) {
	return s.repo.List(ctx)
}

func (s *TestService) Get(ctx context.Context, id string) (*domain.Test, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	t, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrTestNotFound) {
		return nil, nil
	}
	return t, err
}

func (s *TestService) Create(ctx context.Context, t domain.Test) (string, error) {
	t.ID = ""
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" || t.Slots < 0 || t.Booked < 0 || t.Price < 0 {
		return "", domain.ErrInvalidInput
	}
	id, err := s.repo.Create(ctx, &t)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("test_id", id).Str("name", t.Name).Int("slots", t.Slots).Msg("test created")
	return id, nil
}

func (s *TestService) Update(ctx context.Context, id string, patch domain.TestPatch) (domain.UpdateResult, error) {
	if !domain.IsValidID(id) {
		return domain.UpdateResult{}, domain.ErrInvalidID
	}
	if patch.Empty() {
		return domain.UpdateResult{}, domain.ErrInvalidInput
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *TestService) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	if !domain.IsValidID(id) {
		return domain.DeleteResult{}, domain.ErrInvalidID
	}
	res, err := s.repo.Delete(ctx, id)
	if err == nil && res.DeletedCount > 0 {
		s.logger.Info().Str("test_id", id).Msg("test deleted")
	}
	return res, err
}
