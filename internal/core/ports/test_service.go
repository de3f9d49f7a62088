package ports

import (
	"context"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// TestService defines use-case operations for the test catalog.
type TestService interface {
	List(ctx context.Context) ([]domain.Test, error)
	// Get returns nil, nil when the id is well-formed but unknown.
	Get(ctx context.Context, id string) (*domain.Test, error)
	Create(ctx context.Context, t domain.Test) (string, error)
	Update(ctx context.Context, id string, patch domain.TestPatch) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (domain.DeleteResult, error)
}
