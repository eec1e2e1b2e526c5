package reviews

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/ziggway/insight/pkg/query"
	"github.com/ziggway/insight/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reviews", "r").
	Project("id", "ID").
	Project("dataset_id", "DatasetID").
	Project("external_id", "ExternalID").
	Project("order_id", "OrderID").
	Project("score", "Score").
	Project("title", "Title").
	Project("comment", "Comment").
	Project("status", "Status").
	Project("imported_at", "ImportedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "classifications", "c", "LEFT JOIN", "r.id = c.review_id").
	Project("sentiment", "Sentiment").
	Project("urgency", "Urgency").
	Project("category", "Category")

var defaultSort = query.SortField{
	Field:      "ImportedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for review queries.
// Nil fields are ignored. Status, DatasetID, OrderID, Score, and the
// classification fields use exact matching. Comment uses
// case-insensitive contains matching.
type Filters struct {
	DatasetID *uuid.UUID `json:"dataset_id,omitempty"`
	OrderID   *string    `json:"order_id,omitempty"`
	Score     *int       `json:"score,omitempty"`
	Status    *string    `json:"status,omitempty"`
	Comment   *string    `json:"comment,omitempty"`
	Sentiment *string    `json:"sentiment,omitempty"`
	Urgency   *string    `json:"urgency,omitempty"`
	Category  *string    `json:"category,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DatasetID", f.DatasetID).
		WhereEquals("OrderID", f.OrderID).
		WhereEquals("Score", f.Score).
		WhereEquals("Status", f.Status).
		WhereContains("Comment", f.Comment).
		WhereEquals("Sentiment", f.Sentiment).
		WhereEquals("Urgency", f.Urgency).
		WhereEquals("Category", f.Category)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if d := values.Get("dataset_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DatasetID = &id
		}
	}

	if o := values.Get("order_id"); o != "" {
		f.OrderID = &o
	}

	if s := values.Get("score"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			f.Score = &v
		}
	}

	if st := values.Get("status"); st != "" {
		f.Status = &st
	}

	if c := values.Get("comment"); c != "" {
		f.Comment = &c
	}

	if se := values.Get("sentiment"); se != "" {
		f.Sentiment = &se
	}

	if u := values.Get("urgency"); u != "" {
		f.Urgency = &u
	}

	if ca := values.Get("category"); ca != "" {
		f.Category = &ca
	}

	return f
}

func scanReview(s repository.Scanner) (Review, error) {
	var r Review
	err := s.Scan(
		&r.ID,
		&r.DatasetID,
		&r.ExternalID,
		&r.OrderID,
		&r.Score,
		&r.Title,
		&r.Comment,
		&r.Status,
		&r.ImportedAt,
		&r.UpdatedAt,
		&r.Sentiment,
		&r.Urgency,
		&r.Category,
	)
	return r, err
}
