// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package analysis_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantran/phishguard/internal/platform/apperr"

	"github.com/vantran/phishguard/internal/analysis"
)

// geminiBody wraps a verdict JSON string into the generateContent response shape.
func geminiBody(t *testing.T, verdict string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": verdict}}}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestGeminiClient_DecodesVerdict(t *testing.T) {
	verdict := `{
		"isPhishing": true,
		"confidenceScore": 0.98,
		"summary": "Impersonation with a lookalike domain.",
		"redFlags": [{"category": "Sender Anomaly", "description": "Misspelled domain."}],
		"recommendedAction": "Delete this email.",
		"educationalTakeaway": "Inspect sender addresses."
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiBody(t, verdict))
	}))
	defer server.Close()

	client := analysis.NewGeminiClient(server.URL, "gemini-2.5-flash", "test-key", slog.Default())

	result, err := client.Analyze(context.Background(), "From: support@microsft.com ...")
	require.NoError(t, err)

	assert.True(t, result.IsPhishing)
	assert.InDelta(t, 0.98, result.ConfidenceScore, 1e-9)
	require.Len(t, result.RedFlags, 1)
	assert.Equal(t, "Sender Anomaly", result.RedFlags[0].Category)
}

func TestGeminiClient_ClampsOutOfRangeConfidence(t *testing.T) {
	verdict := `{
		"isPhishing": true,
		"confidenceScore": 1.7,
		"summary": "s",
		"redFlags": [],
		"recommendedAction": "a",
		"educationalTakeaway": "e"
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiBody(t, verdict))
	}))
	defer server.Close()

	client := analysis.NewGeminiClient(server.URL, "gemini-2.5-flash", "test-key", slog.Default())

	result, err := client.Analyze(context.Background(), "body")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ConfidenceScore)
}

func TestGeminiClient_MapsFailuresToAnalysisUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http_error_status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
			},
		},
		{
			name: "no_candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"candidates": []}`))
			},
		},
		{
			name: "malformed_verdict",
			handler: func(w http.ResponseWriter, r *http.Request) {
				body, _ := json.Marshal(map[string]any{
					"candidates": []map[string]any{
						{"content": map[string]any{"parts": []map[string]any{{"text": "not json"}}}},
					},
				})
				_, _ = w.Write(body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := analysis.NewGeminiClient(server.URL, "gemini-2.5-flash", "test-key", slog.Default())

			_, err := client.Analyze(context.Background(), "body")
			require.Error(t, err)
			assert.Equal(t, apperr.CodeAnalysisUnavailable, apperr.CodeOf(err))
		})
	}
}

func TestHeuristic_FlagsObviousPhishing(t *testing.T) {
	provider := analysis.NewHeuristic()

	result, err := provider.Analyze(context.Background(),
		"Dear user, your account is suspended! Login immediately at http://microsft-login.com/auth")
	require.NoError(t, err)

	assert.True(t, result.IsPhishing)
	assert.NotEmpty(t, result.RedFlags)
	assert.GreaterOrEqual(t, result.ConfidenceScore, 0.5)
	assert.LessOrEqual(t, result.ConfidenceScore, 1.0)
}

func TestHeuristic_PassesBenignEmail(t *testing.T) {
	provider := analysis.NewHeuristic()

	result, err := provider.Analyze(context.Background(),
		"Hi team, attaching the meeting notes from yesterday. See you Friday.")
	require.NoError(t, err)

	assert.False(t, result.IsPhishing)
}
