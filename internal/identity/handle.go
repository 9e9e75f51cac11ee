package identity

import (
	"sync"
	"sync/atomic"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// Subscriber is the subscription half of Provider.
type Subscriber interface {
	Subscribe(token string, fn func(*domain.Principal)) func()
}

// Handle holds the last principal delivered for one token. Current is safe
// for concurrent use and reflects sign-outs that happen after Watch returns.
type Handle struct {
	current     atomic.Pointer[domain.Principal]
	unsubscribe func()
	once        sync.Once
}

// Watch subscribes to token and returns a Handle tracking its principal.
// Callers must Close the handle when done.
func Watch(s Subscriber, token string) *Handle {
	h := &Handle{}
	h.unsubscribe = s.Subscribe(token, func(p *domain.Principal) {
		h.current.Store(p)
	})
	return h
}

// Current returns the latest principal, or nil when signed out.
func (h *Handle) Current() *domain.Principal {
	return h.current.Load()
}

// Close stops tracking. It is idempotent.
func (h *Handle) Close() {
	h.once.Do(h.unsubscribe)
}

// Watch is shorthand for Watch(p, token).
func (p *Provider) Watch(token string) *Handle {
	return Watch(p, token)
}
