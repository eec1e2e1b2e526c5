// Package reviews implements the review domain for Insight.
// It provides types, data access, and HTTP handlers for customer
// review comments imported from marketplace datasets.
package reviews

import (
	"time"

	"github.com/google/uuid"
)

// Review statuses track classification progress for a comment.
const (
	StatusPending    = "pending"
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// Review represents a customer review comment imported from a dataset.
// Score is the 1-5 star rating when the source row carried one.
// Sentiment, Urgency, and Category reflect the latest classification
// and are nil until the review has been through a run.
type Review struct {
	ID         uuid.UUID `json:"id"`
	DatasetID  uuid.UUID `json:"dataset_id"`
	ExternalID string    `json:"external_id"`
	OrderID    string    `json:"order_id"`
	Score      *int      `json:"score"`
	Title      *string   `json:"title"`
	Comment    string    `json:"comment"`
	Status     string    `json:"status"`
	ImportedAt time.Time `json:"imported_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Sentiment *string `json:"sentiment"`
	Urgency   *string `json:"urgency"`
	Category  *string `json:"category"`
}

// CreateCommand carries one review row for batch import.
type CreateCommand struct {
	ExternalID string  `json:"external_id"`
	OrderID    string  `json:"order_id"`
	Score      *int    `json:"score"`
	Title      *string `json:"title"`
	Comment    string  `json:"comment"`
}
