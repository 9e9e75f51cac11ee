package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/middleware"
)

// ---- mock Verifier -----------------------------------------------------------

type mockVerifier struct {
	verify func(token string) (*domain.Principal, error)
}

func (m *mockVerifier) Verify(token string) (*domain.Principal, error) {
	return m.verify(token)
}

var _ middleware.Verifier = (*mockVerifier)(nil)

// ---- helpers -----------------------------------------------------------------

var ada = &domain.Principal{UID: "uid-ada", Email: "ada@example.com"}

func tokenVerifier(valid string) *mockVerifier {
	return &mockVerifier{verify: func(token string) (*domain.Principal, error) {
		if token != valid {
			return nil, domain.ErrNotAuthenticated
		}
		return ada, nil
	}}
}

// echoCaller writes the principal's uid and token seen by the handler.
var echoCaller = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	uid := ""
	if p := middleware.PrincipalFrom(r.Context()); p != nil {
		uid = p.UID
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"uid":   uid,
		"token": middleware.TokenFrom(r.Context()),
	})
})

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- RequireAuth ---------------------------------------------------------------

func TestRequireAuth_ValidToken(t *testing.T) {
	h := middleware.RequireAuth(tokenVerifier("good"))(echoCaller)

	rec := serve(h, "Bearer good")

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "uid-ada", got["uid"])
	assert.Equal(t, "good", got["token"])
}

func TestRequireAuth_SchemeIsCaseInsensitive(t *testing.T) {
	h := middleware.RequireAuth(tokenVerifier("good"))(echoCaller)
	assert.Equal(t, http.StatusOK, serve(h, "bearer good").Code)
}

func TestRequireAuth_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic Z29vZA==",
		"empty token":    "Bearer ",
		"invalid token":  "Bearer forged",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			h := middleware.RequireAuth(tokenVerifier("good"))(echoCaller)

			rec := serve(h, header)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "not_authenticated", body.Error.Code)
		})
	}
}

// ---- OptionalAuth --------------------------------------------------------------

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	h := middleware.OptionalAuth(tokenVerifier("good"))(echoCaller)

	rec := serve(h, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Empty(t, got["uid"])
	assert.Empty(t, got["token"])
}

func TestOptionalAuth_InvalidTokenRejected(t *testing.T) {
	h := middleware.OptionalAuth(tokenVerifier("good"))(echoCaller)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer forged").Code)
}

func TestOptionalAuth_ValidTokenAttachesPrincipal(t *testing.T) {
	h := middleware.OptionalAuth(tokenVerifier("good"))(echoCaller)

	rec := serve(h, "Bearer good")

	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "uid-ada", got["uid"])
}
