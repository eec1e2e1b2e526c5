package pipeline

import (
	"context"
	"strings"
)

// Adjustment label recorded when the action stage replaces a
// suggested action.
const adjustActionRefined = "action-refined"

// refineActions re-prompts the action stage over resolved negative
// high-urgency verdicts and replaces their suggested actions with the
// stage's answer. Refinement never changes resolution status or the
// run counters: a failed or unparsable refinement batch leaves the
// classify-stage actions in place. No-op when no action spec is
// configured.
func (p *Pipeline) refineActions(ctx context.Context, comments []Comment, run *Run) {
	if p.cfg.ActionSpec == nil {
		return
	}

	var targets []Comment
	for _, c := range comments {
		res, ok := run.Results[c.ID]
		if ok && res.Resolved &&
			res.Verdict.Sentiment == SentimentNegative &&
			res.Verdict.Urgency == UrgencyHigh {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		return
	}

	batches, err := MakeBatches(targets, p.cfg.limits())
	if err != nil {
		return
	}

	for _, batch := range batches {
		if ctx.Err() != nil {
			return
		}

		request := Render(batch, *p.cfg.ActionSpec)
		raw, err := p.classifier.Complete(ctx, request.System, request.User)
		if err != nil {
			p.logger.Warn("action refinement failed",
				"batch", batch.ID,
				"comments", len(batch.Members),
				"error", err,
			)
			continue
		}

		for id, action := range parseActions(raw, batch.IDs()) {
			res := run.Results[id]
			res.Verdict.SuggestedAction = action
			res.Verdict.Adjustments = append(res.Verdict.Adjustments, adjustActionRefined)
			run.Results[id] = res
		}
	}
}

// parseActions extracts per-comment suggested actions from an action
// stage response, keyed by comment id. Entries with unknown ids or
// empty actions are dropped; the first action per id wins.
func parseActions(raw string, expected []string) map[string]string {
	allowed := make(map[string]bool, len(expected))
	for _, id := range expected {
		allowed[id] = true
	}

	actions := make(map[string]string)
	for _, e := range decodeEntries(raw) {
		id := e.commentID()
		if id == "" || !allowed[id] {
			continue
		}
		if _, dup := actions[id]; dup {
			continue
		}
		if action := strings.TrimSpace(e.SuggestedAction); action != "" {
			actions[id] = action
		}
	}
	return actions
}
