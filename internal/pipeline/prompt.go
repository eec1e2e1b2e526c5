package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// PromptSpec carries the instruction text composed for a run. The
// prompts domain resolves active overrides; the pipeline only renders.
type PromptSpec struct {
	// Instructions describe the analyst role and classification rules.
	Instructions string
	// Spec defines the exact output contract the service must follow.
	Spec string
}

// Render produces the classification request for a batch. Rendering is
// deterministic for a given batch and spec so retried attempts carry an
// identical payload. Each member is embedded as a tagged block keyed by
// its id; the service is instructed to echo ids back verbatim.
func Render(batch Batch, spec PromptSpec) Request {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Classify the following %d customer comments.\n", len(batch.Members))
	sb.WriteString("Return one verdict per comment id; never invent or omit ids.\n\n")

	for _, m := range batch.Members {
		sb.WriteString(`<comment id="`)
		sb.WriteString(m.ID)
		sb.WriteString(`"`)
		if m.Score != nil {
			sb.WriteString(` score="`)
			sb.WriteString(strconv.Itoa(*m.Score))
			sb.WriteString(`/5"`)
		}
		sb.WriteString(">\n")
		sb.WriteString(sanitizeText(m.Text))
		sb.WriteString("\n</comment>\n")
	}

	return Request{
		BatchID: batch.ID,
		System:  spec.Instructions + "\n\n" + spec.Spec,
		User:    sb.String(),
	}
}

// sanitizeText keeps a comment from breaking out of its tagged block.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "</comment>", "")
	return strings.TrimSpace(text)
}
