package ports

import (
	"context"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// UserRepository persists user accounts keyed by email.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Create inserts the user and returns the generated id.
	Create(ctx context.Context, user *domain.User) (string, error)
	Update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error)
}
