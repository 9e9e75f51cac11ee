package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// Verifier authenticates a bearer token. *identity.Provider satisfies it.
type Verifier interface {
	Verify(token string) (*domain.Principal, error)
}

type ctxKey int

const (
	principalKey ctxKey = iota
	tokenKey
	callerHolderKey
)

// RequireAuth rejects requests without a valid bearer token with 401.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return authenticate(v, true)
}

// OptionalAuth lets anonymous requests through. A token that is present
// but invalid is still rejected.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return authenticate(v, false)
}

func authenticate(v Verifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				if required {
					writeError(w, http.StatusUnauthorized, string(domain.KindNotAuthenticated), "authentication required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			p, err := v.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, string(domain.KindNotAuthenticated), "invalid or expired token")
				return
			}

			if h, ok := r.Context().Value(callerHolderKey).(*callerHolder); ok {
				h.set(p.UID)
			}
			ctx := context.WithValue(r.Context(), principalKey, p)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the authenticated principal, or nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}

// TokenFrom returns the verified bearer token, or "".
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// WithPrincipal stores p and token in ctx the way the auth middleware does.
func WithPrincipal(ctx context.Context, p *domain.Principal, token string) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	return context.WithValue(ctx, tokenKey, token)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// callerHolder carries the authenticated uid back up to the request logger.
type callerHolder struct {
	mu  sync.Mutex
	val string
}

func (h *callerHolder) set(uid string) {
	h.mu.Lock()
	h.val = uid
	h.mu.Unlock()
}

func (h *callerHolder) uid() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.val
}

func withCallerHolder(r *http.Request) (*http.Request, *callerHolder) {
	h := &callerHolder{}
	return r.WithContext(context.WithValue(r.Context(), callerHolderKey, h)), h
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message}})
}
