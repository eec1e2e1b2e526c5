// Package classifications implements the classification domain for
// Insight. It provides types, data access, and business logic for
// executing classification runs over pending reviews and for storing,
// querying, validating, and updating the verdicts those runs produce.
package classifications

import (
	"time"

	"github.com/google/uuid"
)

// Classification statuses distinguish resolved verdicts from sentinel
// rows recorded for comments the pipeline could not classify.
const (
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// Classification represents the stored verdict for one review. For an
// unresolved row the enum fields carry the unresolved sentinel and
// FailureReason explains why. Adjustments lists the consistency rules
// applied after parsing, if any.
type Classification struct {
	ID              uuid.UUID  `json:"id"`
	ReviewID        uuid.UUID  `json:"review_id"`
	RunID           uuid.UUID  `json:"run_id"`
	Sentiment       string     `json:"sentiment"`
	Urgency         string     `json:"urgency"`
	Category        string     `json:"category"`
	SuggestedAction *string    `json:"suggested_action"`
	Confidence      *float64   `json:"confidence"`
	Status          string     `json:"status"`
	FailureReason   *string    `json:"failure_reason"`
	Adjustments     []string   `json:"adjustments"`
	ModelName       string     `json:"model_name"`
	ClassifiedAt    time.Time  `json:"classified_at"`
	ValidatedBy     *string    `json:"validated_by"`
	ValidatedAt     *time.Time `json:"validated_at"`
}

// Run represents one execution of the classification pipeline.
type Run struct {
	ID               uuid.UUID  `json:"id"`
	DatasetID        *uuid.UUID `json:"dataset_id"`
	State            string     `json:"state"`
	TotalComments    int        `json:"total_comments"`
	BatchesAttempted int        `json:"batches_attempted"`
	BatchesFailed    int        `json:"batches_failed"`
	Unresolved       int        `json:"unresolved"`
	ModelName        string     `json:"model_name"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       time.Time  `json:"finished_at"`
}

// RunCommand carries the parameters for executing a classification
// run. A nil DatasetID runs over pending reviews from every dataset.
// A Limit of 0 takes all pending reviews.
type RunCommand struct {
	DatasetID *uuid.UUID `json:"dataset_id"`
	Limit     int        `json:"limit"`
}

// ValidateCommand carries the data needed to validate a classification.
// ValidatedBy identifies the human who confirmed the verdict.
type ValidateCommand struct {
	ValidatedBy string `json:"validated_by"`
}

// UpdateCommand carries the data needed to manually correct a
// classification. The enum fields overwrite the model-produced values.
// UpdatedBy identifies the human who made the correction.
type UpdateCommand struct {
	Sentiment       string  `json:"sentiment"`
	Urgency         string  `json:"urgency"`
	Category        string  `json:"category"`
	SuggestedAction *string `json:"suggested_action"`
	UpdatedBy       string  `json:"updated_by"`
}
