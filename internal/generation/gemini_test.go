package generation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/generation"
)

func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]string{{"text": text}}},
			"finishReason": "STOP",
		}},
	}
}

func geminiRequest() generation.Request {
	return generation.Request{Prompt: "plan", Schema: generation.ItinerarySchema, Temperature: generation.Temperature}
}

func TestGemini_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["generationConfig"].(map[string]any)
		assert.Equal(t, 0.7, cfg["temperature"])
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		assert.Equal(t, "OBJECT", cfg["responseSchema"].(map[string]any)["type"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiReply(`{"ok":true}`))
	}))
	defer server.Close()

	g := generation.NewGemini("key-123", "gemini-2.5-flash", server.URL, server.Client())
	text, err := g.Complete(context.Background(), geminiRequest())

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
}

func TestGemini_Complete_MissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	g := generation.NewGemini("", "gemini-2.5-flash", server.URL, server.Client())
	_, err := g.Complete(context.Background(), geminiRequest())

	require.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, int32(0), hits.Load())
}

func TestGemini_Complete_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"nope"}}`, domain.ErrInvalidCredential},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, domain.ErrInvalidCredential},
		{"api key invalid", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID"}]}}`, domain.ErrInvalidCredential},
		{"bad request", http.StatusBadRequest, `{"error":{"code":400,"message":"bad schema"}}`, domain.ErrProviderUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":429,"message":"slow down"}}`, domain.ErrProviderUnavailable},
		{"server error", http.StatusInternalServerError, `oops`, domain.ErrProviderUnavailable},
		{"unavailable", http.StatusServiceUnavailable, `{"error":{"code":503,"message":"overloaded"}}`, domain.ErrProviderUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			g := generation.NewGemini("key", "m", server.URL, server.Client())
			_, err := g.Complete(context.Background(), geminiRequest())

			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(1), hits.Load(), "no retries")
		})
	}
}

func TestGemini_Complete_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	g := generation.NewGemini("key", "m", server.URL, server.Client())
	_, err := g.Complete(context.Background(), geminiRequest())

	require.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGemini_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	hc := server.Client()
	hc.Timeout = 20 * time.Millisecond
	g := generation.NewGemini("key", "m", server.URL, hc)
	_, err := g.Complete(context.Background(), geminiRequest())

	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestGemini_Complete_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	g := generation.NewGemini("key", "m", url, nil)
	_, err := g.Complete(context.Background(), geminiRequest())

	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
