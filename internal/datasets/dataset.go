// Package datasets implements the dataset domain for Insight.
// It provides types, data access, and business logic for review
// dataset upload, blob storage integration, and CSV import into the
// review domain.
package datasets

import (
	"time"

	"github.com/google/uuid"
)

// Dataset statuses track import progress for an uploaded file.
const (
	StatusUploaded     = "uploaded"
	StatusImported     = "imported"
	StatusImportFailed = "import_failed"
)

// Dataset represents an uploaded review CSV with its metadata and blob
// storage reference. RowCount is nil until the dataset has been
// imported.
type Dataset struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"storage_key"`
	Status      string    `json:"status"`
	RowCount    *int      `json:"row_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new
// dataset. Data holds the raw CSV bytes.
type CreateCommand struct {
	Data        []byte
	Name        string
	Filename    string
	ContentType string
}

// ImportResult reports the outcome of importing a dataset's rows into
// the review domain. Skipped counts rows dropped for empty comments or
// duplicate ids.
type ImportResult struct {
	Dataset  *Dataset `json:"dataset"`
	Rows     int      `json:"rows"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
}
