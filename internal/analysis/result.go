// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

// Package analysis defines the boundary to the external email-analysis
// provider.
//
// # Architecture
//
// The core never interprets a verdict beyond clamping its confidence score;
// everything else is an opaque payload carried from the provider to the
// report store. [Result] keeps the provider's camelCase field names because
// the same struct decodes the model's structured JSON response.
package analysis

import "context"

// RedFlag is one specific indicator found in the analyzed email.
type RedFlag struct {
	// Category is the indicator class, e.g. "Suspicious Link", "Urgency",
	// "Sender Anomaly", "Generic Greeting", "Grammatical Errors".
	Category string `json:"category"`
	// Description explains the specific finding, quoting the email where possible.
	Description string `json:"description"`
}

// Result is the structured verdict returned by the analysis provider.
type Result struct {
	IsPhishing          bool      `json:"isPhishing"`
	ConfidenceScore     float64   `json:"confidenceScore"`
	Summary             string    `json:"summary"`
	RedFlags            []RedFlag `json:"redFlags"`
	RecommendedAction   string    `json:"recommendedAction"`
	EducationalTakeaway string    `json:"educationalTakeaway"`
}

// ClampConfidence forces ConfidenceScore into [0, 1].
//
// Providers occasionally return out-of-range scores; the store guarantees
// the bound on ingestion regardless of which provider produced the result.
func (r *Result) ClampConfidence() {
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
	if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
}

// Provider produces a [Result] for raw email text.
//
// # Contract
//
// Analyze is the only asynchronous operation in the system: it is awaited
// once per submission with no retries, and failures are surfaced to the
// caller as [apperr.AnalysisUnavailable].
type Provider interface {
	Analyze(ctx context.Context, emailText string) (*Result, error)
}
