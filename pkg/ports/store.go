package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// ResultStore persists finished EngineResults so front ends can fetch a run's
// audit trail later.
type ResultStore interface {
	// Save persists the result under the given id.
	Save(ctx context.Context, id string, result *domain.EngineResult) error

	// Load retrieves a result by id.
	// Returns domain.ErrResultNotFound if the id does not exist.
	Load(ctx context.Context, id string) (*domain.EngineResult, error)

	// Delete removes a result by id.
	Delete(ctx context.Context, id string) error

	// List returns the stored result ids.
	List(ctx context.Context) ([]string, error)
}
