// Package pipeline implements the batch comment classification pipeline.
// It provides batching, prompt rendering, response parsing, verdict
// adjustment, and reconciliation, driven by an orchestrator that fans
// batches out against an external classification service.
package pipeline

import "errors"

// Sentinel errors for pipeline operations.
var (
	ErrInvalidConfig = errors.New("invalid pipeline configuration")
	ErrEmptyInput    = errors.New("no comments to classify")
)

// Failure reasons recorded on unresolved results.
const (
	ReasonTimeout      = "timeout"
	ReasonParseFailure = "parse-failure"
	ReasonMissing      = "missing-from-response"
	ReasonClientFatal  = "client-rejected"
	ReasonUnavailable  = "service-unavailable"
	ReasonCanceled     = "canceled"
	// ReasonOutOfVocabulary marks a verdict whose sentiment or urgency
	// coerced to the unresolved sentinel; the comment needs manual
	// follow-up even though the service answered.
	ReasonOutOfVocabulary = "out-of-vocabulary"
)
