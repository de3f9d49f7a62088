package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

const msgUserExists = "User already exists"

// UserService implements registration and account updates.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// Register inserts a user unless the email is already taken, in which case it
// returns a result with a nil InsertedID and no write happens.
func (s *UserService) Register(ctx context.Context, in ports.RegisterUserInput) (*ports.RegisterUserResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return &ports.RegisterUserResult{Message: msgUserExists}, nil
	}

	id, err := s.repo.Create(ctx, &domain.User{
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Photo:     in.Photo,
		Status:    domain.StatusActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// A concurrent registration can win the race past FindByEmail; the
		// unique index turns that into the same exists result.
		if errors.Is(err, domain.ErrUserExists) {
			return &ports.RegisterUserResult{Message: msgUserExists}, nil
		}
		return nil, err
	}

	s.logger.Info().Str("email", email).Str("user_id", id).Msg("user registered")
	return &ports.RegisterUserResult{InsertedID: &id}, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *UserService) UpdateStatus(ctx context.Context, email, status string) (domain.UpdateResult, error) {
	return s.update(ctx, email, domain.UserPatch{Status: &status})
}

func (s *UserService) UpdateName(ctx context.Context, email, name string) (domain.UpdateResult, error) {
	name = strings.TrimSpace(name)
	return s.update(ctx, email, domain.UserPatch{Name: &name})
}

func (s *UserService) MakeAdmin(ctx context.Context, email string) (domain.UpdateResult, error) {
	role := domain.RoleAdmin
	res, err := s.update(ctx, email, domain.UserPatch{Role: &role})
	if err == nil && res.ModifiedCount > 0 {
		s.logger.Info().Str("email", email).Msg("user promoted to admin")
	}
	return res, err
}

func (s *UserService) update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error) {
	email = normalizeEmail(email)
	if email == "" || patch.Empty() {
		return domain.UpdateResult{}, domain.ErrInvalidInput
	}
	return s.repo.Update(ctx, email, patch)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
