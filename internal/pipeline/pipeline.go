package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ziggway/insight/pkg/llm"
)

// Config bounds batch construction and concurrent dispatch. ActionSpec,
// when set, enables the action refinement pass over classified verdicts.
type Config struct {
	MaxBatchSize   int
	MaxBatchBytes  int
	MaxConcurrency int
	Spec           PromptSpec
	ActionSpec     *PromptSpec
}

func (c Config) limits() Limits {
	return Limits{MaxComments: c.MaxBatchSize, MaxBytes: c.MaxBatchBytes}
}

func (c Config) validate() error {
	if err := c.limits().validate(); err != nil {
		return err
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: max_concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.Spec.Instructions == "" {
		return fmt.Errorf("%w: prompt instructions required", ErrInvalidConfig)
	}
	if c.ActionSpec != nil && c.ActionSpec.Instructions == "" {
		return fmt.Errorf("%w: action prompt instructions required", ErrInvalidConfig)
	}
	return nil
}

// Pipeline classifies comment sets by batching them, dispatching each
// batch to a classifier, and reconciling every response back against
// its input. Every submitted comment produces exactly one Result.
type Pipeline struct {
	classifier llm.Classifier
	cfg        Config
	logger     *slog.Logger
}

// New builds a Pipeline, validating the configuration up front.
func New(classifier llm.Classifier, cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		classifier: classifier,
		cfg:        cfg,
		logger:     logger.With("system", "pipeline"),
	}, nil
}

// Run classifies comments and returns the completed Run. Batches are
// dispatched concurrently up to MaxConcurrency. A failed batch marks
// its members unresolved rather than failing the run; only an empty
// input or invalid state returns an error. Cancellation stops new
// dispatches and marks undispatched comments unresolved; batches
// already in flight finish on their own.
func (p *Pipeline) Run(ctx context.Context, comments []Comment) (*Run, error) {
	if len(comments) == 0 {
		return nil, ErrEmptyInput
	}

	batches, err := MakeBatches(comments, p.cfg.limits())
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:            uuid.New(),
		State:         StateRunning,
		TotalComments: len(comments),
		Results:       make(map[string]Result, len(comments)),
		StartedAt:     time.Now().UTC(),
	}

	p.logger.Info("run started",
		"run", run.ID,
		"comments", run.TotalComments,
		"batches", len(batches),
	)

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.MaxConcurrency)

	for _, batch := range batches {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				// never dispatched: counts as neither attempted nor failed
				mu.Lock()
				defer mu.Unlock()
				for _, result := range Reconcile(batch, nil, ReasonCanceled) {
					run.Results[result.CommentID] = result
				}
				return nil
			}

			results, failed := p.classify(groupCtx, batch)
			mu.Lock()
			defer mu.Unlock()
			run.BatchesAttempted++
			if failed {
				run.BatchesFailed++
			}
			for _, result := range results {
				run.Results[result.CommentID] = result
			}
			return nil
		})
	}
	// workers never return errors; Wait only orders completion
	_ = group.Wait()

	p.refineActions(ctx, comments, run)

	for _, result := range run.Results {
		if !result.Resolved {
			run.Unresolved++
		}
	}
	run.FinishedAt = time.Now().UTC()
	if run.Unresolved > 0 {
		run.State = StateCompletedWithFailures
	} else {
		run.State = StateCompleted
	}

	p.logger.Info("run finished",
		"run", run.ID,
		"state", run.State,
		"batches_failed", run.BatchesFailed,
		"unresolved", run.Unresolved,
	)
	return run, nil
}

// classify executes one batch end to end. The returned flag reports
// whether the batch failed as a whole (dispatch error or unusable
// response).
func (p *Pipeline) classify(ctx context.Context, batch Batch) ([]Result, bool) {
	request := Render(batch, p.cfg.Spec)
	raw, err := p.classifier.Complete(ctx, request.System, request.User)
	if err != nil {
		reason := failureReason(err)
		p.logger.Warn("batch failed",
			"batch", batch.ID,
			"comments", len(batch.Members),
			"reason", reason,
			"error", err,
		)
		return Reconcile(batch, nil, reason), true
	}

	outcome := ParseResponse(raw, batch.IDs())
	if outcome.Failed() {
		p.logger.Warn("batch response unusable", "batch", batch.ID, "comments", len(batch.Members))
		return Reconcile(batch, nil, ReasonParseFailure), true
	}
	if len(outcome.Ignored) > 0 {
		p.logger.Warn("response contained unknown ids", "batch", batch.ID, "ids", outcome.Ignored)
	}

	adjusted := make(map[string]Verdict, len(outcome.Verdicts))
	for _, member := range batch.Members {
		if verdict, ok := outcome.Verdicts[member.ID]; ok {
			adjusted[member.ID] = Adjust(verdict, member)
		}
	}
	return Reconcile(batch, adjusted, ReasonMissing), false
}

// failureReason maps a dispatch error to a stored failure reason.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case llm.Timeout(err):
		return ReasonTimeout
	case llm.Fatal(err):
		return ReasonClientFatal
	default:
		return ReasonUnavailable
	}
}
