// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package analysis

import (
	"context"
	"fmt"
	"strings"
)

// heuristicSignal is one pattern the offline analyzer looks for.
type heuristicSignal struct {
	needles     []string
	category    string
	description string
	weight      float64
}

var heuristicSignals = []heuristicSignal{
	{
		needles:     []string{"urgent", "immediately", "suspended", "act now", "action required"},
		category:    "Urgency",
		description: "The email pressures the reader to act immediately, a common tactic to prevent careful inspection.",
		weight:      0.3,
	},
	{
		needles:     []string{"http://", "click here", "login", "verify"},
		category:    "Suspicious Link",
		description: "The email asks the reader to follow a link and sign in or verify details, which is how credentials are harvested.",
		weight:      0.35,
	},
	{
		needles:     []string{"dear user", "dear customer", "hello,"},
		category:    "Generic Greeting",
		description: "The greeting is generic rather than personalized, typical of broad-net phishing campaigns.",
		weight:      0.2,
	},
	{
		needles:     []string{"password", "bank", "account"},
		category:    "Sensitive Information",
		description: "The email concerns account or banking details, the usual target of credential theft.",
		weight:      0.15,
	},
}

// Heuristic is an offline [Provider] used when no API key is configured.
//
// It scores a handful of well-known phishing signals so that local
// development and demos work without external credentials. It is not a
// security tool.
type Heuristic struct{}

// NewHeuristic creates the offline analyzer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Analyze implements [Provider].
func (h *Heuristic) Analyze(ctx context.Context, emailText string) (*Result, error) {
	lowered := strings.ToLower(emailText)

	score := 0.0
	flags := make([]RedFlag, 0, len(heuristicSignals))

	for _, signal := range heuristicSignals {
		for _, needle := range signal.needles {
			if strings.Contains(lowered, needle) {
				score += signal.weight
				flags = append(flags, RedFlag{Category: signal.category, Description: signal.description})
				break
			}
		}
	}

	isPhishing := score >= 0.5

	result := &Result{
		IsPhishing:      isPhishing,
		ConfidenceScore: score,
		Summary: fmt.Sprintf(
			"Offline heuristic analysis matched %d known phishing signals. This verdict was produced without the AI provider and should be treated as a rough indicator only.",
			len(flags),
		),
		RedFlags:            flags,
		RecommendedAction:   "Do not click links or reply until the sender is verified through a trusted channel.",
		EducationalTakeaway: "Urgent language, generic greetings and sign-in links are the three most common phishing tells. Check all three before trusting any email.",
	}

	if !isPhishing {
		result.RecommendedAction = "No strong phishing signals found, but remain cautious with unexpected emails."
	}

	result.ClampConfidence()

	return result, nil
}
