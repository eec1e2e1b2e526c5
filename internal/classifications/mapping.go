package classifications

import (
	"encoding/json"
	"net/url"

	"github.com/google/uuid"

	"github.com/ziggway/insight/pkg/query"
	"github.com/ziggway/insight/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classifications", "c").
	Project("id", "ID").
	Project("review_id", "ReviewID").
	Project("run_id", "RunID").
	Project("sentiment", "Sentiment").
	Project("urgency", "Urgency").
	Project("category", "Category").
	Project("suggested_action", "SuggestedAction").
	Project("confidence", "Confidence").
	Project("status", "Status").
	Project("failure_reason", "FailureReason").
	Project("adjustments", "Adjustments").
	Project("model_name", "ModelName").
	Project("classified_at", "ClassifiedAt").
	Project("validated_by", "ValidatedBy").
	Project("validated_at", "ValidatedAt")

var defaultSort = query.SortField{
	Field:      "ClassifiedAt",
	Descending: true,
}

var runProjection = query.
	NewProjectionMap("public", "classification_runs", "r").
	Project("id", "ID").
	Project("dataset_id", "DatasetID").
	Project("state", "State").
	Project("total_comments", "TotalComments").
	Project("batches_attempted", "BatchesAttempted").
	Project("batches_failed", "BatchesFailed").
	Project("unresolved", "Unresolved").
	Project("model_name", "ModelName").
	Project("started_at", "StartedAt").
	Project("finished_at", "FinishedAt")

var runSort = query.SortField{
	Field:      "StartedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for classification
// queries. Nil fields are ignored; all use exact matching.
type Filters struct {
	ReviewID  *uuid.UUID `json:"review_id,omitempty"`
	RunID     *uuid.UUID `json:"run_id,omitempty"`
	Sentiment *string    `json:"sentiment,omitempty"`
	Urgency   *string    `json:"urgency,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ReviewID", f.ReviewID).
		WhereEquals("RunID", f.RunID).
		WhereEquals("Sentiment", f.Sentiment).
		WhereEquals("Urgency", f.Urgency).
		WhereEquals("Category", f.Category).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if r := values.Get("review_id"); r != "" {
		if id, err := uuid.Parse(r); err == nil {
			f.ReviewID = &id
		}
	}

	if r := values.Get("run_id"); r != "" {
		if id, err := uuid.Parse(r); err == nil {
			f.RunID = &id
		}
	}

	if s := values.Get("sentiment"); s != "" {
		f.Sentiment = &s
	}

	if u := values.Get("urgency"); u != "" {
		f.Urgency = &u
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if st := values.Get("status"); st != "" {
		f.Status = &st
	}

	return f
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var c Classification
	var adjustments []byte
	err := s.Scan(
		&c.ID,
		&c.ReviewID,
		&c.RunID,
		&c.Sentiment,
		&c.Urgency,
		&c.Category,
		&c.SuggestedAction,
		&c.Confidence,
		&c.Status,
		&c.FailureReason,
		&adjustments,
		&c.ModelName,
		&c.ClassifiedAt,
		&c.ValidatedBy,
		&c.ValidatedAt,
	)
	if err != nil {
		return c, err
	}
	if len(adjustments) > 0 {
		if err := json.Unmarshal(adjustments, &c.Adjustments); err != nil {
			return c, err
		}
	}
	if c.Adjustments == nil {
		c.Adjustments = []string{}
	}
	return c, nil
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	err := s.Scan(
		&r.ID,
		&r.DatasetID,
		&r.State,
		&r.TotalComments,
		&r.BatchesAttempted,
		&r.BatchesFailed,
		&r.Unresolved,
		&r.ModelName,
		&r.StartedAt,
		&r.FinishedAt,
	)
	return r, err
}
