package datasets

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ziggway/insight/pkg/pagination"
)

// System defines the public contract for dataset domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Dataset], error)

	Find(ctx context.Context, id uuid.UUID) (*Dataset, error)
	Create(ctx context.Context, cmd CreateCommand) (*Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Import parses the dataset's CSV from blob storage and loads its
	// rows into the review domain.
	Import(ctx context.Context, id uuid.UUID) (*ImportResult, error)

	// Download streams the dataset's raw CSV from blob storage. The
	// caller must close the reader.
	Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Dataset, error)
}
