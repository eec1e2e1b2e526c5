package reviews

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ziggway/insight/pkg/pagination"
	"github.com/ziggway/insight/pkg/query"
	"github.com/ziggway/insight/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a review repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "reviews"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Review], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Comment", "OrderID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Review, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rv, err := repository.QueryOne(ctx, r.db, q, args, scanReview)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rv, nil
}

func (r *repo) Pending(ctx context.Context, datasetID *uuid.UUID, limit int) ([]Review, error) {
	status := StatusPending
	qb := query.
		NewBuilder(projection, query.SortField{Field: "ImportedAt"}).
		WhereEquals("Status", &status).
		WhereEquals("DatasetID", datasetID)

	q, args := qb.BuildPage(1, limitOrAll(limit))
	items, err := repository.QueryMany(ctx, r.db, q, args, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query pending reviews: %w", err)
	}
	return items, nil
}

func (r *repo) CreateBatch(ctx context.Context, datasetID uuid.UUID, cmds []CreateCommand) (int, error) {
	rows := make([]CreateCommand, 0, len(cmds))
	for _, cmd := range cmds {
		if strings.TrimSpace(cmd.Comment) == "" {
			continue
		}
		rows = append(rows, cmd)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	q := `
		INSERT INTO reviews(id, dataset_id, external_id, order_id, score, title, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dataset_id, external_id) DO NOTHING`

	inserted, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		count := 0
		for _, cmd := range rows {
			result, err := tx.ExecContext(
				ctx, q,
				uuid.New(),
				datasetID,
				cmd.ExternalID,
				cmd.OrderID,
				cmd.Score,
				cmd.Title,
				cmd.Comment,
			)
			if err != nil {
				return 0, fmt.Errorf("insert review %s: %w", cmd.ExternalID, err)
			}
			if n, err := result.RowsAffected(); err == nil {
				count += int(n)
			}
		}
		return count, nil
	})

	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reviews imported",
		"dataset", datasetID,
		"received", len(cmds),
		"inserted", inserted,
	)
	return inserted, nil
}

// limitOrAll converts a 0 limit into an effectively unbounded page size.
func limitOrAll(limit int) int {
	if limit <= 0 {
		return 1 << 30
	}
	return limit
}
