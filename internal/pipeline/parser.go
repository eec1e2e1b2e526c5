package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/ziggway/insight/pkg/formatting"
)

// verdictEntry mirrors the output contract the prompt spec demands.
// Both id and comment_id are accepted; models are inconsistent about
// which one they echo.
type verdictEntry struct {
	ID              string   `json:"id"`
	CommentID       string   `json:"comment_id"`
	Sentiment       string   `json:"sentiment"`
	Urgency         string   `json:"urgency"`
	Category        string   `json:"category"`
	SuggestedAction string   `json:"suggested_action"`
	Confidence      *float64 `json:"confidence"`
}

func (e verdictEntry) commentID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.CommentID
}

// verdictEnvelope accepts responses that wrap the array in an object.
type verdictEnvelope struct {
	Verdicts []verdictEntry `json:"verdicts"`
	Results  []verdictEntry `json:"results"`
}

// ParseOutcome is the Response Parser output for one batch: verdicts
// keyed by comment id, expected ids absent from the response, and ids
// present in the response but not in the batch.
type ParseOutcome struct {
	Verdicts map[string]Verdict
	Missing  []string
	Ignored  []string
}

// Failed reports whether the response yielded no verdicts at all,
// which the orchestrator treats as a batch-level parse failure.
func (o ParseOutcome) Failed() bool {
	return len(o.Verdicts) == 0
}

// ParseResponse decodes raw service output into verdicts for the
// expected id set. It attempts structured decoding first and falls back
// to tolerant line-by-line extraction, since service output is not
// guaranteed well-formed. Enum fields are validated and coerced; an
// undecodable response produces an empty mapping with every expected id
// missing rather than an error.
func ParseResponse(raw string, expected []string) ParseOutcome {
	allowed := make(map[string]bool, len(expected))
	for _, id := range expected {
		allowed[id] = true
	}

	entries := decodeEntries(raw)

	outcome := ParseOutcome{Verdicts: make(map[string]Verdict, len(entries))}
	for _, e := range entries {
		id := e.commentID()
		if id == "" {
			continue
		}
		if !allowed[id] {
			outcome.Ignored = append(outcome.Ignored, id)
			continue
		}
		if _, dup := outcome.Verdicts[id]; dup {
			continue
		}
		outcome.Verdicts[id] = Verdict{
			CommentID:       id,
			Sentiment:       ParseSentiment(e.Sentiment),
			Urgency:         ParseUrgency(e.Urgency),
			Category:        ParseCategory(e.Category),
			SuggestedAction: strings.TrimSpace(e.SuggestedAction),
			Confidence:      e.Confidence,
		}
	}

	for _, id := range expected {
		if _, ok := outcome.Verdicts[id]; !ok {
			outcome.Missing = append(outcome.Missing, id)
		}
	}

	return outcome
}

func decodeEntries(raw string) []verdictEntry {
	if entries, err := formatting.Parse[[]verdictEntry](raw); err == nil {
		return entries
	}

	if env, err := formatting.Parse[verdictEnvelope](raw); err == nil {
		if len(env.Verdicts) > 0 {
			return env.Verdicts
		}
		if len(env.Results) > 0 {
			return env.Results
		}
	}

	return extractLineEntries(raw)
}

// extractLineEntries recovers per-comment objects from responses that
// interleave prose with JSON fragments, one object per line.
func extractLineEntries(raw string) []verdictEntry {
	var entries []verdictEntry
	for _, line := range strings.Split(raw, "\n") {
		obj, ok := formatting.ExtractObject(line)
		if !ok {
			continue
		}
		var e verdictEntry
		if err := json.Unmarshal([]byte(obj), &e); err != nil {
			continue
		}
		if e.commentID() != "" {
			entries = append(entries, e)
		}
	}
	return entries
}
