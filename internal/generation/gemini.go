package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// Gemini calls generateContent through the Gen AI SDK with a response schema.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewGemini constructs a Gemini provider. An empty baseURL keeps the SDK
// default endpoint.
func NewGemini(apiKey, model, baseURL string, hc *http.Client) *Gemini {
	return &Gemini{apiKey: apiKey, model: model, baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (g *Gemini) Name() string { return "gemini" }

// Complete sends one generateContent request.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", domain.ErrMissingCredential
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.http,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(req.Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema.Gemini(),
	})
	if err != nil {
		return "", classifyGemini(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", domain.ErrMalformedResponse, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no candidates", domain.ErrMalformedResponse)
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, p := range candidate.Content.Parts {
			if p != nil {
				text.WriteString(p.Text)
			}
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty candidate (finish reason %s)", domain.ErrMalformedResponse, candidate.FinishReason)
	}
	return text.String(), nil
}

// classifyGemini maps SDK errors onto the generation taxonomy. Gemini reports
// API_KEY_INVALID as a 400.
func classifyGemini(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return asUnavailable(err)
		}
		apiErr = *ptr
	}

	for _, d := range apiErr.Details {
		if reason, _ := d["reason"].(string); reason == "API_KEY_INVALID" {
			return fmt.Errorf("%w (status %d): %s", domain.ErrInvalidCredential, apiErr.Code, apiErr.Message)
		}
	}
	return classifyStatus(apiErr.Code, apiErr.Message)
}
