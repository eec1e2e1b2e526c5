package datasets

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ziggway/insight/internal/reviews"
	"github.com/ziggway/insight/pkg/pagination"
	"github.com/ziggway/insight/pkg/query"
	"github.com/ziggway/insight/pkg/repository"
	"github.com/ziggway/insight/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	reviews    reviews.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a dataset repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	rev reviews.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		reviews:    rev,
		logger:     logger.With("system", "datasets"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Dataset], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count datasets: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDataset)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Dataset, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDataset)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Dataset, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload dataset blob: %w", err)
	}

	q := `
		INSERT INTO datasets(id, name, filename, content_type, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, filename, content_type, size_bytes, storage_key, status, row_count, uploaded_at, updated_at`

	insertArgs := []any{
		id,
		cmd.Name,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		key,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Dataset, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDataset)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("dataset created", "id", d.ID, "name", d.Name, "filename", d.Filename)
	return &d, nil
}

func (r *repo) Import(ctx context.Context, id uuid.UUID) (*ImportResult, error) {
	dataset, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	reader, err := r.storage.Download(ctx, dataset.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download dataset blob: %w", err)
	}
	defer reader.Close()

	cmds, err := ParseReviews(reader)
	if err != nil {
		if markErr := r.setStatus(ctx, id, StatusImportFailed, nil); markErr != nil {
			r.logger.Warn("failed to mark dataset import failure", "id", id, "error", markErr)
		}
		return nil, err
	}
	if len(cmds) == 0 {
		if markErr := r.setStatus(ctx, id, StatusImportFailed, nil); markErr != nil {
			r.logger.Warn("failed to mark dataset import failure", "id", id, "error", markErr)
		}
		return nil, ErrNoComments
	}

	imported, err := r.reviews.CreateBatch(ctx, id, cmds)
	if err != nil {
		return nil, fmt.Errorf("import reviews: %w", err)
	}

	if err := r.setStatus(ctx, id, StatusImported, &imported); err != nil {
		return nil, err
	}

	dataset, err = r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Dataset:  dataset,
		Rows:     len(cmds),
		Imported: imported,
		Skipped:  len(cmds) - imported,
	}

	r.logger.Info("dataset imported",
		"id", id,
		"rows", result.Rows,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)
	return result, nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *Dataset, error) {
	dataset, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := r.storage.Download(ctx, dataset.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download dataset blob: %w", err)
	}
	return reader, dataset, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	dataset, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM datasets WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, dataset.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", dataset.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("dataset deleted", "id", id)
	return nil
}

func (r *repo) setStatus(ctx context.Context, id uuid.UUID, status string, rowCount *int) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"UPDATE datasets SET status = $1, row_count = COALESCE($2, row_count), updated_at = now() WHERE id = $3",
			status, rowCount, id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("datasets/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "dataset"
	}
	return url.PathEscape(name)
}
