package classifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziggway/insight/pkg/pagination"
)

// System defines the public contract for classification domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Classification], error)

	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	FindByReview(ctx context.Context, reviewID uuid.UUID) (*Classification, error)

	// Run executes the classification pipeline over pending reviews
	// and persists one classification per review, resolved or not.
	Run(ctx context.Context, cmd RunCommand) (*Run, error)

	Runs(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Run], error)
	FindRun(ctx context.Context, id uuid.UUID) (*Run, error)

	Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Classification, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Classification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
