// Package triage derives the routing priority of a feedback record.
package triage

import "customer-feedback-hub/backend/internal/sentiment"

// Priority is the triage tier of a feedback record
type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

// Valid reports whether p is one of the known tiers
func (p Priority) Valid() bool {
	return p == High || p == Medium || p == Low
}

// Calculate applies the precedence rules in order: negative sentiment or a
// rating of 1-2 is high, positive sentiment or a rating of 4+ is low,
// everything else is medium. A nil or zero rating counts as not provided.
// messageLength is accepted for callers but does not influence the result.
func Calculate(label sentiment.Label, rating *int, messageLength int) Priority {
	rated := rating != nil && *rating != 0

	if label == sentiment.Negative || (rated && *rating <= 2) {
		return High
	}
	if label == sentiment.Positive || (rated && *rating >= 4) {
		return Low
	}
	return Medium
}
