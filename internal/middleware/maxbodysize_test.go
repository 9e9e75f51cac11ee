package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
)

// decodeItinerary decodes the body the way the itinerary handler does and
// answers 413 when the body limit trips.
var decodeItinerary = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Destination string `json:"destination"`
		Days        int    `json:"days"`
		Interests   string `json:"interests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
})

func itineraryBody(interests string) string {
	return `{"destination":"Kyoto","days":4,"interests":"` + interests + `"}`
}

func TestMaxBodySizeHandler(t *testing.T) {
	const limit = 256
	tests := []struct {
		name          string
		body          string
		contentLength int64
		want          int
	}{
		{"request within limit", itineraryBody("temples, tea"), 0, http.StatusOK},
		{"declared length over limit", itineraryBody(strings.Repeat("gardens ", 64)), 0, http.StatusRequestEntityTooLarge},
		{"streamed body over limit", itineraryBody(strings.Repeat("gardens ", 64)), -1, http.StatusRequestEntityTooLarge},
	}
	h := middleware.NewMaxBodySizeHandler(limit)(decodeItinerary)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/itineraries", strings.NewReader(tc.body))
			if tc.contentLength != 0 {
				req.ContentLength = tc.contentLength
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestMaxBodySizeHandler_EarlyRejectionSkipsHandler(t *testing.T) {
	called := false
	h := middleware.NewMaxBodySizeHandler(32)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	body := `{"email":"ada@example.com","password":"correct horse battery staple"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":{"code":"request_too_large","message":"request body too large"}}`, rec.Body.String())
}
