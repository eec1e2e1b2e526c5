package pipeline

// Reconcile merges parsed verdicts back onto a batch's full member set.
// Every member yields exactly one Result: resolved when a usable
// verdict exists, otherwise unresolved with a reason. A verdict whose
// sentiment or urgency carries the unresolved sentinel is kept but
// marked out-of-vocabulary, so the comment stays visible for manual
// follow-up. batchFailure names a batch-level cause (timeout, client
// rejection, total parse failure); when empty, members without a
// verdict are marked missing-from-response. Reconcile is a pure
// function of its inputs, so re-running it over the same pair yields
// identical results.
func Reconcile(batch Batch, verdicts map[string]Verdict, batchFailure string) []Result {
	results := make([]Result, 0, len(batch.Members))

	for _, m := range batch.Members {
		if v, ok := verdicts[m.ID]; ok {
			if v.Sentiment == SentimentUnresolved || v.Urgency == UrgencyUnresolved {
				results = append(results, Result{
					CommentID:     m.ID,
					Verdict:       v,
					FailureReason: ReasonOutOfVocabulary,
				})
				continue
			}
			results = append(results, Result{
				CommentID: m.ID,
				Verdict:   v,
				Resolved:  true,
			})
			continue
		}

		reason := batchFailure
		if reason == "" {
			reason = ReasonMissing
		}
		results = append(results, Result{
			CommentID:     m.ID,
			Verdict:       unresolvedVerdict(m.ID),
			FailureReason: reason,
		})
	}

	return results
}
