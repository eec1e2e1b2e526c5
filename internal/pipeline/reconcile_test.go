package pipeline_test

import (
	"reflect"
	"testing"

	"github.com/ziggway/insight/internal/pipeline"
)

func TestReconcileFullCoverage(t *testing.T) {
	batch := pipeline.Batch{Members: makeComments(4)}
	verdicts := map[string]pipeline.Verdict{
		"a": verdict(pipeline.SentimentPositive, pipeline.UrgencyLow, pipeline.CategoryOther),
		"c": verdict(pipeline.SentimentNegative, pipeline.UrgencyHigh, pipeline.CategoryLogistics),
	}

	results := pipeline.Reconcile(batch, verdicts, "")

	if len(results) != len(batch.Members) {
		t.Fatalf("got %d results, want %d", len(results), len(batch.Members))
	}

	byID := make(map[string]pipeline.Result, len(results))
	for _, r := range results {
		byID[r.CommentID] = r
	}

	for _, id := range []string{"a", "c"} {
		if !byID[id].Resolved {
			t.Errorf("%s should be resolved", id)
		}
		if byID[id].FailureReason != "" {
			t.Errorf("%s carries failure reason %q", id, byID[id].FailureReason)
		}
	}

	for _, id := range []string{"b", "d"} {
		r := byID[id]
		if r.Resolved {
			t.Errorf("%s should be unresolved", id)
		}
		if r.FailureReason != pipeline.ReasonMissing {
			t.Errorf("%s got reason %q, want %q", id, r.FailureReason, pipeline.ReasonMissing)
		}
		if r.Verdict.Sentiment != pipeline.SentimentUnresolved {
			t.Errorf("%s got sentiment %q, want unresolved sentinel", id, r.Verdict.Sentiment)
		}
	}
}

func TestReconcileBatchFailure(t *testing.T) {
	batch := pipeline.Batch{Members: makeComments(3)}

	results := pipeline.Reconcile(batch, nil, pipeline.ReasonTimeout)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Resolved {
			t.Errorf("%s resolved despite batch failure", r.CommentID)
		}
		if r.FailureReason != pipeline.ReasonTimeout {
			t.Errorf("%s got reason %q, want %q", r.CommentID, r.FailureReason, pipeline.ReasonTimeout)
		}
	}
}

func TestReconcileOutOfVocabulary(t *testing.T) {
	batch := pipeline.Batch{Members: makeComments(3)}
	verdicts := map[string]pipeline.Verdict{
		"a": verdict(pipeline.SentimentUnresolved, pipeline.UrgencyLow, pipeline.CategoryOther),
		"b": verdict(pipeline.SentimentNegative, pipeline.UrgencyUnresolved, pipeline.CategoryLogistics),
		"c": verdict(pipeline.SentimentPositive, pipeline.UrgencyLow, pipeline.CategoryUnresolved),
	}

	results := pipeline.Reconcile(batch, verdicts, "")

	byID := make(map[string]pipeline.Result, len(results))
	for _, r := range results {
		byID[r.CommentID] = r
	}

	for _, id := range []string{"a", "b"} {
		r := byID[id]
		if r.Resolved {
			t.Errorf("%s resolved despite sentinel sentiment or urgency", id)
		}
		if r.FailureReason != pipeline.ReasonOutOfVocabulary {
			t.Errorf("%s got reason %q, want %q", id, r.FailureReason, pipeline.ReasonOutOfVocabulary)
		}
	}

	// the returned verdict is kept for inspection
	if byID["b"].Verdict.Sentiment != pipeline.SentimentNegative {
		t.Errorf("got sentiment %q, want %q", byID["b"].Verdict.Sentiment, pipeline.SentimentNegative)
	}

	// an unresolved category alone does not fail the comment
	if !byID["c"].Resolved {
		t.Error("c should be resolved")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	batch := pipeline.Batch{Members: makeComments(3)}
	verdicts := map[string]pipeline.Verdict{
		"b": verdict(pipeline.SentimentNeutral, pipeline.UrgencyLow, pipeline.CategoryOther),
	}

	first := pipeline.Reconcile(batch, verdicts, "")
	second := pipeline.Reconcile(batch, verdicts, "")

	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !reflect.DeepEqual(first[i], second[i]) {
			t.Errorf("result %d differs between runs", i)
		}
	}
}
