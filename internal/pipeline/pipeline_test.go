package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/ziggway/insight/internal/pipeline"
	"github.com/ziggway/insight/pkg/llm"
)

type stubClassifier struct {
	complete func(ctx context.Context, system, user string) (string, error)
}

func (s *stubClassifier) Complete(ctx context.Context, system, user string) (string, error) {
	return s.complete(ctx, system, user)
}

func (s *stubClassifier) Model() string { return "stub" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() pipeline.Config {
	return pipeline.Config{
		MaxBatchSize:   3,
		MaxBatchBytes:  1 << 16,
		MaxConcurrency: 2,
		Spec:           testSpec(),
	}
}

func newPipeline(t *testing.T, classifier llm.Classifier) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(classifier, testConfig(), discardLogger())
	if err != nil {
		t.Fatalf("new pipeline failed: %v", err)
	}
	return p
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pipeline.Config)
	}{
		{"zero batch size", func(c *pipeline.Config) { c.MaxBatchSize = 0 }},
		{"zero batch bytes", func(c *pipeline.Config) { c.MaxBatchBytes = 0 }},
		{"zero concurrency", func(c *pipeline.Config) { c.MaxConcurrency = 0 }},
		{"empty instructions", func(c *pipeline.Config) { c.Spec.Instructions = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := pipeline.New(llm.NewMock(""), cfg, discardLogger()); !errors.Is(err, pipeline.ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRunEmptyInput(t *testing.T) {
	p := newPipeline(t, llm.NewMock(""))
	if _, err := p.Run(context.Background(), nil); !errors.Is(err, pipeline.ErrEmptyInput) {
		t.Errorf("got %v, want ErrEmptyInput", err)
	}
}

func TestRunWithMockClassifier(t *testing.T) {
	score2, score5 := 2, 5
	comments := []pipeline.Comment{
		{ID: "r-1", Text: "produto chegou quebrado, quero reembolso", Score: &score2, Row: 0},
		{ID: "r-2", Text: "entrega rapida, produto excelente", Score: &score5, Row: 1},
		{ID: "r-3", Text: "atendimento demorou para responder", Row: 2},
		{ID: "r-4", Text: "preco justo, recomendo", Score: &score5, Row: 3},
	}

	p := newPipeline(t, llm.NewMock("test"))
	run, err := p.Run(context.Background(), comments)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.State != pipeline.StateCompleted {
		t.Errorf("got state %q, want completed", run.State)
	}
	if run.TotalComments != 4 {
		t.Errorf("got %d total comments, want 4", run.TotalComments)
	}
	if run.Unresolved != 0 {
		t.Errorf("got %d unresolved, want 0", run.Unresolved)
	}
	if len(run.Results) != 4 {
		t.Fatalf("got %d results, want 4", len(run.Results))
	}

	negative := run.Results["r-1"]
	if !negative.Resolved {
		t.Fatal("r-1 unresolved")
	}
	if negative.Verdict.Sentiment != pipeline.SentimentNegative {
		t.Errorf("r-1 got sentiment %q, want negative", negative.Verdict.Sentiment)
	}

	positive := run.Results["r-2"]
	if positive.Verdict.Sentiment != pipeline.SentimentPositive {
		t.Errorf("r-2 got sentiment %q, want positive", positive.Verdict.Sentiment)
	}
}

func TestRunBatchDispatchFailure(t *testing.T) {
	classifier := &stubClassifier{
		complete: func(ctx context.Context, system, user string) (string, error) {
			return "", fmt.Errorf("%w: invalid api key", llm.ErrFatal)
		},
	}

	p := newPipeline(t, classifier)
	run, err := p.Run(context.Background(), makeComments(5))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.State != pipeline.StateCompletedWithFailures {
		t.Errorf("got state %q, want completed_with_failures", run.State)
	}
	if run.Unresolved != 5 {
		t.Errorf("got %d unresolved, want 5", run.Unresolved)
	}
	if run.BatchesFailed != run.BatchesAttempted {
		t.Errorf("got %d failed of %d attempted, want all failed", run.BatchesFailed, run.BatchesAttempted)
	}
	for id, result := range run.Results {
		if result.FailureReason != pipeline.ReasonClientFatal {
			t.Errorf("%s got reason %q, want %q", id, result.FailureReason, pipeline.ReasonClientFatal)
		}
	}
}

func TestRunParseFailure(t *testing.T) {
	classifier := &stubClassifier{
		complete: func(ctx context.Context, system, user string) (string, error) {
			return "I am unable to classify these comments.", nil
		},
	}

	p := newPipeline(t, classifier)
	run, err := p.Run(context.Background(), makeComments(2))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for id, result := range run.Results {
		if result.FailureReason != pipeline.ReasonParseFailure {
			t.Errorf("%s got reason %q, want %q", id, result.FailureReason, pipeline.ReasonParseFailure)
		}
	}
}

func TestRunPartialResponse(t *testing.T) {
	classifier := &stubClassifier{
		complete: func(ctx context.Context, system, user string) (string, error) {
			// Answers only the first comment of every batch.
			return `[{"id": "a", "sentiment": "positive", "urgency": "low", "category": "other"}]`, nil
		},
	}

	p := newPipeline(t, classifier)
	run, err := p.Run(context.Background(), makeComments(3))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.State != pipeline.StateCompletedWithFailures {
		t.Errorf("got state %q, want completed_with_failures", run.State)
	}
	if !run.Results["a"].Resolved {
		t.Error("a should be resolved")
	}
	for _, id := range []string{"b", "c"} {
		result := run.Results[id]
		if result.Resolved {
			t.Errorf("%s should be unresolved", id)
		}
		if result.FailureReason != pipeline.ReasonMissing {
			t.Errorf("%s got reason %q, want %q", id, result.FailureReason, pipeline.ReasonMissing)
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	classifier := &stubClassifier{
		complete: func(ctx context.Context, system, user string) (string, error) {
			t.Error("classifier called despite canceled context")
			return "", ctx.Err()
		},
	}

	p := newPipeline(t, classifier)
	run, err := p.Run(ctx, makeComments(4))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.State != pipeline.StateCompletedWithFailures {
		t.Errorf("got state %q, want completed_with_failures", run.State)
	}
	if len(run.Results) != 4 {
		t.Fatalf("got %d results, want 4", len(run.Results))
	}
	for id, result := range run.Results {
		if result.FailureReason != pipeline.ReasonCanceled {
			t.Errorf("%s got reason %q, want %q", id, result.FailureReason, pipeline.ReasonCanceled)
		}
	}

	// batches that never reached the classifier are not attempts
	if run.BatchesAttempted != 0 {
		t.Errorf("got %d batches attempted, want 0", run.BatchesAttempted)
	}
	if run.BatchesFailed != 0 {
		t.Errorf("got %d batches failed, want 0", run.BatchesFailed)
	}
}

func actionConfig() pipeline.Config {
	cfg := testConfig()
	cfg.ActionSpec = &pipeline.PromptSpec{
		Instructions: "You draft escalation actions for urgent complaints.",
		Spec:         "Respond with a JSON array of id and suggested_action.",
	}
	return cfg
}

func TestRunRefinesActions(t *testing.T) {
	classifier := &stubClassifier{
		complete: func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(system, "escalation") {
				return `[{"id": "a", "suggested_action": "priorizar reembolso e contato em 24h"}]`, nil
			}
			return `[
				{"id": "a", "sentiment": "negative", "urgency": "high", "category": "logistics", "suggested_action": "responder ao cliente"},
				{"id": "b", "sentiment": "positive", "urgency": "low", "category": "other", "suggested_action": "agradecer"}
			]`, nil
		},
	}

	p, err := pipeline.New(classifier, actionConfig(), discardLogger())
	if err != nil {
		t.Fatalf("new pipeline failed: %v", err)
	}

	run, err := p.Run(context.Background(), makeComments(2))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.State != pipeline.StateCompleted {
		t.Errorf("got state %q, want completed", run.State)
	}

	refined := run.Results["a"]
	if refined.Verdict.SuggestedAction != "priorizar reembolso e contato em 24h" {
		t.Errorf("got action %q, want refined action", refined.Verdict.SuggestedAction)
	}
	if !slices.Contains(refined.Verdict.Adjustments, "action-refined") {
		t.Errorf("a missing action-refined marker, got %v", refined.Verdict.Adjustments)
	}

	untouched := run.Results["b"]
	if untouched.Verdict.SuggestedAction != "agradecer" {
		t.Errorf("got action %q, want agradecer", untouched.Verdict.SuggestedAction)
	}
	if slices.Contains(untouched.Verdict.Adjustments, "action-refined") {
		t.Error("b should not carry the action-refined marker")
	}
}

func TestRunRefinementFailureKeepsActions(t *testing.T) {
	classifier := &stubClassifier{
		complete: func(ctx context.Context, system, user string) (string, error) {
			if strings.Contains(system, "escalation") {
				return "I cannot produce actions for these comments.", nil
			}
			return `[{"id": "a", "sentiment": "negative", "urgency": "high", "category": "logistics", "suggested_action": "responder ao cliente"}]`, nil
		},
	}

	p, err := pipeline.New(classifier, actionConfig(), discardLogger())
	if err != nil {
		t.Fatalf("new pipeline failed: %v", err)
	}

	run, err := p.Run(context.Background(), makeComments(1))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if run.State != pipeline.StateCompleted {
		t.Errorf("got state %q, want completed", run.State)
	}
	result := run.Results["a"]
	if result.Verdict.SuggestedAction != "responder ao cliente" {
		t.Errorf("got action %q, want the original action", result.Verdict.SuggestedAction)
	}
	if slices.Contains(result.Verdict.Adjustments, "action-refined") {
		t.Error("unparsable refinement must not mark the verdict")
	}
}

func TestNewRejectsEmptyActionInstructions(t *testing.T) {
	cfg := actionConfig()
	cfg.ActionSpec.Instructions = ""
	if _, err := pipeline.New(llm.NewMock(""), cfg, discardLogger()); !errors.Is(err, pipeline.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}
