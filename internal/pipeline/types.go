package pipeline

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentiment is the categorical polarity assigned to a comment.
type Sentiment string

// Sentiment values. Unresolved is the sentinel for comments that could
// not be trustworthily classified.
const (
	SentimentPositive   Sentiment = "positive"
	SentimentNeutral    Sentiment = "neutral"
	SentimentNegative   Sentiment = "negative"
	SentimentUnresolved Sentiment = "unresolved"
)

// Urgency is the follow-up priority assigned to a comment.
type Urgency string

// Urgency values.
const (
	UrgencyLow        Urgency = "low"
	UrgencyMedium     Urgency = "medium"
	UrgencyHigh       Urgency = "high"
	UrgencyUnresolved Urgency = "unresolved"
)

// Category is the complaint/praise topic assigned to a comment.
type Category string

// Category values.
const (
	CategoryLogistics  Category = "logistics"
	CategoryQuality    Category = "quality"
	CategorySupport    Category = "support"
	CategoryPricing    Category = "pricing"
	CategoryOther      Category = "other"
	CategoryUnresolved Category = "unresolved"
)

// The source dataset is Brazilian Portuguese; models frequently answer
// in the vocabulary of the reviews they were shown, so the Portuguese
// labels are accepted as aliases of the canonical enum values.
var sentimentAliases = map[string]Sentiment{
	"positive": SentimentPositive, "positivo": SentimentPositive,
	"neutral": SentimentNeutral, "neutro": SentimentNeutral,
	"negative": SentimentNegative, "negativo": SentimentNegative,
}

var urgencyAliases = map[string]Urgency{
	"low": UrgencyLow, "baixa": UrgencyLow,
	"medium": UrgencyMedium, "media": UrgencyMedium, "média": UrgencyMedium,
	"high": UrgencyHigh, "alta": UrgencyHigh,
}

var categoryAliases = map[string]Category{
	"logistics": CategoryLogistics, "logistica": CategoryLogistics, "logística": CategoryLogistics,
	"quality": CategoryQuality, "qualidade": CategoryQuality,
	"support": CategorySupport, "atendimento": CategorySupport,
	"pricing": CategoryPricing, "preco": CategoryPricing, "preço": CategoryPricing,
	"other": CategoryOther, "outro": CategoryOther,
}

// ParseSentiment maps a raw model value to a Sentiment, trimming and
// lowercasing first. Out-of-vocabulary values coerce to SentimentUnresolved.
func ParseSentiment(raw string) Sentiment {
	if v, ok := sentimentAliases[normalizeEnum(raw)]; ok {
		return v
	}
	return SentimentUnresolved
}

// ParseUrgency maps a raw model value to an Urgency, coercing unknown
// values to UrgencyUnresolved.
func ParseUrgency(raw string) Urgency {
	if v, ok := urgencyAliases[normalizeEnum(raw)]; ok {
		return v
	}
	return UrgencyUnresolved
}

// ParseCategory maps a raw model value to a Category, coercing unknown
// values to CategoryUnresolved.
func ParseCategory(raw string) Category {
	if v, ok := categoryAliases[normalizeEnum(raw)]; ok {
		return v
	}
	return CategoryUnresolved
}

func normalizeEnum(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Comment is one free-text customer comment submitted for classification.
// ID must be unique and stable for the duration of a run. Score is the
// review score the customer gave alongside the comment, when known; it
// feeds verdict adjustment. Row references the source table row.
type Comment struct {
	ID    string
	Text  string
	Score *int
	Row   int
}

// Batch is a bounded group of comments sent together in one
// classification request. Member order follows input order for
// traceability but carries no semantic weight.
type Batch struct {
	ID      int
	Members []Comment
}

// IDs returns the member comment ids in batch order.
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Members))
	for i, m := range b.Members {
		ids[i] = m.ID
	}
	return ids
}

// Request is the rendered payload for one classification call.
// System carries the instructions and output contract; User carries the
// tagged comment blocks.
type Request struct {
	BatchID int
	System  string
	User    string
}

// Verdict is the classification produced for one comment.
type Verdict struct {
	CommentID       string    `json:"comment_id"`
	Sentiment       Sentiment `json:"sentiment"`
	Urgency         Urgency   `json:"urgency"`
	Category        Category  `json:"category"`
	SuggestedAction string    `json:"suggested_action"`
	Confidence      *float64  `json:"confidence,omitempty"`
	Adjustments     []string  `json:"adjustments,omitempty"`
}

// unresolvedVerdict returns the sentinel verdict for a comment that
// could not be classified.
func unresolvedVerdict(commentID string) Verdict {
	return Verdict{
		CommentID: commentID,
		Sentiment: SentimentUnresolved,
		Urgency:   UrgencyUnresolved,
		Category:  CategoryUnresolved,
	}
}

// Result is the final per-comment outcome after reconciliation.
// Resolved is false when the verdict is the unresolved sentinel, in
// which case FailureReason names the cause.
type Result struct {
	CommentID     string  `json:"comment_id"`
	Verdict       Verdict `json:"verdict"`
	Resolved      bool    `json:"resolved"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// State is the lifecycle state of a pipeline run.
type State string

// Run states. A run ends Completed only when every submitted comment
// resolved; any unresolved comment moves it to CompletedWithFailures.
const (
	StateRunning               State = "running"
	StateCompleted             State = "completed"
	StateCompletedWithFailures State = "completed_with_failures"
)

// Run aggregates the outcome of one pipeline invocation. Results is
// keyed by comment id and covers exactly the submitted id set.
type Run struct {
	ID               uuid.UUID         `json:"id"`
	State            State             `json:"state"`
	TotalComments    int               `json:"total_comments"`
	BatchesAttempted int               `json:"batches_attempted"`
	BatchesFailed    int               `json:"batches_failed"`
	Unresolved       int               `json:"unresolved"`
	Results          map[string]Result `json:"results"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
}
