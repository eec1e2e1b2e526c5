package pipeline

import "fmt"

// promptOverheadBytes estimates the wrapping each comment adds to the
// rendered payload (tag, id attribute, score attribute, newlines).
const promptOverheadBytes = 64

// Limits bounds batch construction by member count and estimated
// rendered payload size.
type Limits struct {
	MaxComments int
	MaxBytes    int
}

func (l Limits) validate() error {
	if l.MaxComments <= 0 {
		return fmt.Errorf("%w: max comments must be > 0, got %d", ErrInvalidConfig, l.MaxComments)
	}
	if l.MaxBytes <= 0 {
		return fmt.Errorf("%w: max bytes must be > 0, got %d", ErrInvalidConfig, l.MaxBytes)
	}
	return nil
}

// estimateSize approximates a comment's contribution to the rendered
// prompt in bytes.
func estimateSize(c Comment) int {
	return len(c.Text) + len(c.ID) + promptOverheadBytes
}

// MakeBatches splits comments into batches respecting the limits.
// Every comment lands in exactly one batch and original relative order
// is preserved across batches. A single comment whose estimated size
// exceeds the byte budget gets a dedicated batch instead of being
// dropped. The last batch may be smaller than the limits allow.
func MakeBatches(comments []Comment, limits Limits) ([]Batch, error) {
	if err := limits.validate(); err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, nil
	}

	var batches []Batch
	var members []Comment
	bytes := 0

	flush := func() {
		if len(members) == 0 {
			return
		}
		batches = append(batches, Batch{ID: len(batches), Members: members})
		members = nil
		bytes = 0
	}

	for _, c := range comments {
		size := estimateSize(c)

		if size > limits.MaxBytes {
			// Oversized comment: close the open batch and emit the
			// comment alone so it is attempted rather than lost.
			flush()
			batches = append(batches, Batch{ID: len(batches), Members: []Comment{c}})
			continue
		}

		if len(members) >= limits.MaxComments || bytes+size > limits.MaxBytes {
			flush()
		}

		members = append(members, c)
		bytes += size
	}
	flush()

	return batches, nil
}
