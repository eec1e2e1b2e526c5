package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziggway/insight/pkg/pagination"
)

// System defines the public contract for review domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Review], error)

	Find(ctx context.Context, id uuid.UUID) (*Review, error)

	// Pending returns unclassified reviews, oldest first, optionally
	// scoped to one dataset. A limit of 0 returns all pending reviews.
	Pending(ctx context.Context, datasetID *uuid.UUID, limit int) ([]Review, error)

	// CreateBatch imports review rows for a dataset in a single
	// transaction, skipping rows with empty comments. Returns the
	// number of rows inserted.
	CreateBatch(ctx context.Context, datasetID uuid.UUID, cmds []CreateCommand) (int, error)
}
