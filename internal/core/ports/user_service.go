package ports

import (
	"context"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// RegisterUserInput carries a registration request.
type RegisterUserInput struct {
	Email string
	Name  string
	Photo string
}

// RegisterUserResult is returned by Register. InsertedID is nil when the email
// was already registered, in which case Message explains why.
type RegisterUserResult struct {
	Message    string
	InsertedID *string
}

// UserService defines use-case operations for users.
type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*RegisterUserResult, error)
	List(ctx context.Context) ([]domain.User, error)
	// Get returns nil, nil when no user has that email.
	Get(ctx context.Context, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, email, status string) (domain.UpdateResult, error)
	UpdateName(ctx context.Context, email, name string) (domain.UpdateResult, error)
	MakeAdmin(ctx context.Context, email string) (domain.UpdateResult, error)
}
