package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ziggway/insight/internal/pipeline"
	"github.com/ziggway/insight/internal/prompts"
	"github.com/ziggway/insight/internal/reviews"
	"github.com/ziggway/insight/pkg/llm"
	"github.com/ziggway/insight/pkg/pagination"
	"github.com/ziggway/insight/pkg/query"
	"github.com/ziggway/insight/pkg/repository"
)

type repo struct {
	db         *sql.DB
	classifier llm.Classifier
	cfg        pipeline.Config
	reviews    reviews.System
	prompts    prompts.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a classification repository implementing the System
// interface. cfg carries the pipeline limits; prompt content is
// resolved per run so instruction overrides take effect without a
// restart.
func New(
	db *sql.DB,
	classifier llm.Classifier,
	cfg pipeline.Config,
	logger *slog.Logger,
	pagination pagination.Config,
	rev reviews.System,
	pr prompts.System,
) System {
	return &repo{
		db:         db,
		classifier: classifier,
		cfg:        cfg,
		reviews:    rev,
		prompts:    pr,
		logger:     logger.With("system", "classifications"),
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
) (*pagination.PageResult[Classification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "SuggestedAction", "FailureReason")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) FindByReview(ctx context.Context, reviewID uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ReviewID", reviewID)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Run(ctx context.Context, cmd RunCommand) (*Run, error) {
	pending, err := r.reviews.Pending(ctx, cmd.DatasetID, cmd.Limit)
	if err != nil {
		return nil, fmt.Errorf("load pending reviews: %w", err)
	}
	if len(pending) == 0 {
		return nil, ErrNoPending
	}

	spec, actionSpec, err := r.resolveSpecs(ctx)
	if err != nil {
		return nil, err
	}

	cfg := r.cfg
	cfg.Spec = spec
	cfg.ActionSpec = actionSpec
	pl, err := pipeline.New(r.classifier, cfg, r.logger)
	if err != nil {
		return nil, err
	}

	comments := make([]pipeline.Comment, len(pending))
	byID := make(map[string]reviews.Review, len(pending))
	for i, review := range pending {
		comments[i] = pipeline.Comment{
			ID:    review.ID.String(),
			Text:  commentText(review),
			Score: review.Score,
			Row:   i,
		}
		byID[review.ID.String()] = review
	}

	result, err := pl.Run(ctx, comments)
	if err != nil {
		return nil, err
	}

	run, err := r.persistRun(ctx, cmd.DatasetID, result, byID)
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (r *repo) Runs(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Run], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(runProjection, runSort)
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	runs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(runs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) FindRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	q, args := query.NewBuilder(runProjection).BuildSingle("ID", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrRunNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Classification, error) {
	validateQ := `
		UPDATE classifications
		SET validated_by = $1, validated_at = NOW()
		WHERE id = $2
		RETURNING ` + classificationColumns

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		return repository.QueryOne(ctx, tx, validateQ, []any{cmd.ValidatedBy, id}, scanClassification)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("classification validated",
		"id", c.ID,
		"validated_by", c.ValidatedBy,
	)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Classification, error) {
	if err := validateEnums(cmd); err != nil {
		return nil, err
	}

	updateQ := `
		UPDATE classifications
		SET sentiment = $1, urgency = $2, category = $3, suggested_action = $4,
			status = $5, failure_reason = NULL, validated_by = $6, validated_at = NOW()
		WHERE id = $7
		RETURNING ` + classificationColumns

	updateArgs := []any{
		cmd.Sentiment,
		cmd.Urgency,
		cmd.Category,
		cmd.SuggestedAction,
		StatusResolved,
		cmd.UpdatedBy,
		id,
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		cl, err := repository.QueryOne(ctx, tx, updateQ, updateArgs, scanClassification)
		if err != nil {
			return Classification{}, err
		}

		// a manual correction resolves the underlying review
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE reviews SET status = $1, updated_at = NOW() WHERE id = $2",
			reviews.StatusResolved, cl.ReviewID,
		); err != nil {
			return Classification{}, fmt.Errorf("update review status: %w", err)
		}

		return cl, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("classification updated",
		"id", c.ID,
		"updated_by", cmd.UpdatedBy,
	)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM classifications WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("classification deleted", "id", id)
	return nil
}

const classificationColumns = `id, review_id, run_id, sentiment, urgency, category,
			suggested_action, confidence, status, failure_reason, adjustments,
			model_name, classified_at, validated_by, validated_at`

// persistRun stores the run summary and one classification per result
// in a single transaction, transitioning each review's status to match
// its outcome. Re-running a review replaces its previous verdict.
func (r *repo) persistRun(
	ctx context.Context,
	datasetID *uuid.UUID,
	result *pipeline.Run,
	byID map[string]reviews.Review,
) (*Run, error) {
	runQ := `
		INSERT INTO classification_runs(
			id, dataset_id, state, total_comments, batches_attempted,
			batches_failed, unresolved, model_name, started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, dataset_id, state, total_comments, batches_attempted,
				  batches_failed, unresolved, model_name, started_at, finished_at`

	runArgs := []any{
		result.ID,
		datasetID,
		string(result.State),
		result.TotalComments,
		result.BatchesAttempted,
		result.BatchesFailed,
		result.Unresolved,
		r.classifier.Model(),
		result.StartedAt,
		result.FinishedAt,
	}

	upsertQ := `
		INSERT INTO classifications(
			id, review_id, run_id, sentiment, urgency, category,
			suggested_action, confidence, status, failure_reason, adjustments, model_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (review_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			sentiment = EXCLUDED.sentiment,
			urgency = EXCLUDED.urgency,
			category = EXCLUDED.category,
			suggested_action = EXCLUDED.suggested_action,
			confidence = EXCLUDED.confidence,
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason,
			adjustments = EXCLUDED.adjustments,
			model_name = EXCLUDED.model_name,
			classified_at = NOW(),
			validated_by = NULL,
			validated_at = NULL`

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		stored, err := repository.QueryOne(ctx, tx, runQ, runArgs, scanRun)
		if err != nil {
			return Run{}, fmt.Errorf("insert run: %w", err)
		}

		for id, res := range result.Results {
			review, ok := byID[id]
			if !ok {
				continue
			}

			adjustments, err := json.Marshal(emptyIfNil(res.Verdict.Adjustments))
			if err != nil {
				return Run{}, fmt.Errorf("marshal adjustments: %w", err)
			}

			status := StatusResolved
			reviewStatus := reviews.StatusResolved
			var failureReason *string
			if !res.Resolved {
				status = StatusUnresolved
				reviewStatus = reviews.StatusUnresolved
				failureReason = &res.FailureReason
			}

			upsertArgs := []any{
				uuid.New(),
				review.ID,
				stored.ID,
				string(res.Verdict.Sentiment),
				string(res.Verdict.Urgency),
				string(res.Verdict.Category),
				nilIfEmpty(res.Verdict.SuggestedAction),
				res.Verdict.Confidence,
				status,
				failureReason,
				adjustments,
				r.classifier.Model(),
			}

			if _, err := tx.ExecContext(ctx, upsertQ, upsertArgs...); err != nil {
				return Run{}, fmt.Errorf("upsert classification for review %s: %w", review.ID, err)
			}

			if err := repository.ExecExpectOne(
				ctx, tx,
				"UPDATE reviews SET status = $1, updated_at = NOW() WHERE id = $2",
				reviewStatus, review.ID,
			); err != nil {
				return Run{}, fmt.Errorf("update review %s status: %w", review.ID, err)
			}
		}

		return stored, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("run persisted",
		"run", run.ID,
		"state", run.State,
		"total", run.TotalComments,
		"unresolved", run.Unresolved,
	)
	return &run, nil
}

// resolveSpecs builds the prompt pair for a run: the classify stage
// drives classification, the action stage refines suggested actions on
// escalated verdicts. Active overrides win over the stage defaults.
func (r *repo) resolveSpecs(ctx context.Context) (pipeline.PromptSpec, *pipeline.PromptSpec, error) {
	classify, err := r.resolveStage(ctx, prompts.StageClassify)
	if err != nil {
		return pipeline.PromptSpec{}, nil, err
	}

	action, err := r.resolveStage(ctx, prompts.StageAction)
	if err != nil {
		return pipeline.PromptSpec{}, nil, err
	}

	return classify, &action, nil
}

func (r *repo) resolveStage(ctx context.Context, stage prompts.Stage) (pipeline.PromptSpec, error) {
	instructions, err := r.prompts.Resolve(ctx, stage)
	if err != nil {
		return pipeline.PromptSpec{}, fmt.Errorf("resolve %s instructions: %w", stage, err)
	}

	spec, err := prompts.Spec(stage)
	if err != nil {
		return pipeline.PromptSpec{}, fmt.Errorf("resolve %s spec: %w", stage, err)
	}

	return pipeline.PromptSpec{Instructions: instructions, Spec: spec}, nil
}

// commentText joins a review's title and body for classification.
func commentText(review reviews.Review) string {
	if review.Title != nil && strings.TrimSpace(*review.Title) != "" {
		return strings.TrimSpace(*review.Title) + "\n" + review.Comment
	}
	return review.Comment
}

func validateEnums(cmd UpdateCommand) error {
	if pipeline.ParseSentiment(cmd.Sentiment) == pipeline.SentimentUnresolved {
		return fmt.Errorf("%w: sentiment %q", ErrInvalidEnum, cmd.Sentiment)
	}
	if pipeline.ParseUrgency(cmd.Urgency) == pipeline.UrgencyUnresolved {
		return fmt.Errorf("%w: urgency %q", ErrInvalidEnum, cmd.Urgency)
	}
	if pipeline.ParseCategory(cmd.Category) == pipeline.CategoryUnresolved {
		return fmt.Errorf("%w: category %q", ErrInvalidEnum, cmd.Category)
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
