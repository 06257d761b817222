// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vantran/phishguard/internal/platform/apperr"
	"github.com/vantran/phishguard/internal/platform/constants"
)

const systemInstruction = "You are an expert cybersecurity analyst specializing in identifying phishing emails. " +
	"Analyze the following email content and provide a structured JSON response. " +
	"Your analysis must be thorough, clear, and actionable. Provide a detailed summary, specific red flags, " +
	"a direct recommended action for the user, and a helpful educational takeaway to prevent future incidents. " +
	"Focus on identifying common phishing tactics like suspicious links, urgent language, sender impersonation, and grammatical errors."

// responseSchema constrains the model output to the [Result] shape.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"isPhishing":      map[string]any{"type": "BOOLEAN", "description": "True if the email is likely a phishing attempt, otherwise false."},
		"confidenceScore": map[string]any{"type": "NUMBER", "description": "A score from 0.0 to 1.0 indicating the confidence in the phishing assessment. 1.0 is highest confidence."},
		"summary":         map[string]any{"type": "STRING", "description": "A detailed, multi-sentence summary of the analysis. Explain the core threat and why the email is considered malicious or safe."},
		"redFlags": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"category":    map[string]any{"type": "STRING", "description": "The category of the red flag (e.g., 'Suspicious Link', 'Urgency', 'Sender Anomaly', 'Generic Greeting', 'Grammatical Errors')."},
					"description": map[string]any{"type": "STRING", "description": "A detailed explanation of the specific red flag found in the email, quoting the problematic part if possible."},
				},
				"required": []string{"category", "description"},
			},
		},
		"recommendedAction":   map[string]any{"type": "STRING", "description": "A clear, direct instruction for the user."},
		"educationalTakeaway": map[string]any{"type": "STRING", "description": "A brief educational point explaining the tactic used in the email and how the user can spot similar threats in the future."},
	},
	"required": []string{"isPhishing", "confidenceScore", "summary", "redFlags", "recommendedAction", "educationalTakeaway"},
}

// GeminiClient calls the Gemini generateContent REST endpoint with a strict
// response schema and decodes the verdict into a [Result].
//
// The core treats the model as an opaque scorer: one awaited call, no
// retries, and every failure collapses into ANALYSIS_UNAVAILABLE.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	log        *slog.Logger
}

// NewGeminiClient builds a provider against the given endpoint and model.
//
// # Parameters
//   - endpoint: Base URL, e.g. "https://generativelanguage.googleapis.com".
//   - model: Model name, e.g. "gemini-2.5-flash".
//   - apiKey: API key passed via the x-goog-api-key header.
func NewGeminiClient(endpoint, model, apiKey string, logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: &http.Client{Timeout: constants.AnalysisRequestTimeout},
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		log:        logger,
	}
}

// generateRequest is the subset of the generateContent payload we use.
type generateRequest struct {
	SystemInstruction *content        `json:"system_instruction,omitempty"`
	Contents          []content       `json:"contents"`
	GenerationConfig  *generateConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateConfig struct {
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      float64        `json:"temperature"`
}

// generateResponse is the subset of the generateContent response we read.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Analyze implements [Provider].
func (client *GeminiClient) Analyze(ctx context.Context, emailText string) (*Result, error) {
	// ── 1. Request Construction ───────────────────────────────────────────

	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Parts: []part{{Text: emailText}}}},
		GenerationConfig: &generateConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   responseSchema,
			Temperature:      0.2,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: encode request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", client.endpoint, client.model)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: build request: %w", err))
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-goog-api-key", client.apiKey)

	// ── 2. Single Awaited Call ────────────────────────────────────────────

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: call provider: %w", err))
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		// Drain a bounded amount of the body for the server-side log only.
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 2048))
		client.log.Error("analysis_provider_error",
			slog.Int("status", response.StatusCode),
			slog.String("body", string(detail)),
		)
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: provider returned status %d", response.StatusCode))
	}

	// ── 3. Verdict Extraction ─────────────────────────────────────────────

	var decoded generateResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: decode response: %w", err))
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: provider returned no candidates"))
	}

	verdictJSON := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)

	result := &Result{}
	if err := json.Unmarshal([]byte(verdictJSON), result); err != nil {
		return nil, apperr.AnalysisUnavailable(fmt.Errorf("analysis: decode verdict: %w", err))
	}

	result.ClampConfidence()

	return result, nil
}
