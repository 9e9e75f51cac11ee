// Package identity implements email/password authentication and the
// principal change stream the rest of the API consumes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// UserStore is the persistence the provider needs.
// repo.UserRepo and memrepo.UserRepo satisfy it.
type UserStore interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Options configures a Provider.
type Options struct {
	// Secret signs HS256 tokens. Required.
	Secret []byte
	// TTL is the token lifetime. Defaults to 24h.
	TTL time.Duration
	// PasswordEnabled gates SignIn and SignUp; when false both fail with
	// domain.ErrConfiguration.
	PasswordEnabled bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Provider signs users up and in, issues tokens, and notifies subscribers
// whenever a token's principal changes.
type Provider struct {
	users   UserStore
	opts    Options
	revoked *cache.Cache
	log     *slog.Logger

	mu        sync.Mutex
	listeners map[uint64]*listener
	nextID    uint64
}

// listener deliveries are serialised by mu so a late delivery cannot
// overwrite the nil a sign-out produced.
type listener struct {
	uid string
	jti string
	fn  func(*domain.Principal)

	mu sync.Mutex
}

// New constructs a Provider.
func New(users UserStore, opts Options, log *slog.Logger) *Provider {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{
		users:     users,
		opts:      opts,
		revoked:   cache.New(opts.TTL, 10*time.Minute),
		log:       log,
		listeners: make(map[uint64]*listener),
	}
}

// SignUp creates an account and returns its principal with a fresh token.
// An empty displayName is derived from the email.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (domain.Principal, string, error) {
	if !p.opts.PasswordEnabled {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignUp: %w", domain.ErrConfiguration)
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignUp: %w: invalid email address", domain.ErrValidation)
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignUp: %w", domain.ErrWeakPassword)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = domain.DefaultDisplayName(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignUp: %w: password is too long", domain.ErrValidation)
		}
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignUp: hash: %w", err)
	}

	user, err := p.users.Create(ctx, domain.User{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    p.opts.Now().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignUp: %w", err)
	}

	return p.issue(user.Principal(), "SignUp")
}

// SignIn authenticates an email/password pair.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Principal, string, error) {
	if !p.opts.PasswordEnabled {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignIn: %w", domain.ErrConfiguration)
	}

	user, err := p.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignIn: %w", domain.ErrInvalidCredentials)
	}
	if err != nil {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignIn: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.SignIn: %w", domain.ErrInvalidCredentials)
	}

	return p.issue(user.Principal(), "SignIn")
}

// SignOut revokes token and tells its subscribers the principal is gone.
// It never fails: unparseable or already revoked tokens are ignored.
func (p *Provider) SignOut(token string) {
	c, err := p.parse(token)
	if err != nil {
		p.log.Debug("sign out ignored", "error", err)
		return
	}
	if _, gone := p.revoked.Get(c.ID); gone {
		return
	}

	ttl := time.Until(c.ExpiresAt.Time)
	if ttl <= 0 {
		ttl = time.Minute
	}
	p.revoked.Set(c.ID, struct{}{}, ttl)
	p.log.Info("signed out", "uid", c.Subject)

	p.notify(func(l *listener) bool { return l.jti == c.ID }, nil)
}

// Verify authenticates a bearer token.
func (p *Provider) Verify(token string) (*domain.Principal, error) {
	c, err := p.parse(token)
	if err != nil {
		return nil, fmt.Errorf("identity.Provider.Verify: %w: %w", domain.ErrNotAuthenticated, err)
	}
	if _, gone := p.revoked.Get(c.ID); gone {
		return nil, fmt.Errorf("identity.Provider.Verify: %w: token revoked", domain.ErrNotAuthenticated)
	}
	principal := c.principal()
	return &principal, nil
}

// Subscribe registers fn for changes to the principal behind token.
// fn is called once before Subscribe returns with the current state (nil
// when the token is not valid) and again on every sign-in or sign-out that
// affects it. The returned func unsubscribes and is safe to call twice.
func (p *Provider) Subscribe(token string, fn func(*domain.Principal)) func() {
	c, err := p.parse(token)
	if err != nil {
		fn(nil)
		return func() {}
	}

	l := &listener{uid: c.Subject, jti: c.ID, fn: fn}
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	// Registered before the first delivery, so a concurrent SignOut either
	// sees this listener or has already revoked the token.
	principal := c.principal()
	p.deliver(l, &principal)

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// deliver hands principal to l, or nil once l's token is revoked.
func (p *Provider) deliver(l *listener, principal *domain.Principal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if principal != nil {
		if _, gone := p.revoked.Get(l.jti); gone {
			principal = nil
		} else {
			cp := *principal
			principal = &cp
		}
	}
	l.fn(principal)
}

func (p *Provider) issue(principal domain.Principal, op string) (domain.Principal, string, error) {
	token, jti, err := p.sign(principal)
	if err != nil {
		return domain.Principal{}, "", fmt.Errorf("identity.Provider.%s: sign: %w", op, err)
	}
	p.log.Info("signed in", "uid", principal.UID, "op", op)

	// Listeners on other tokens of the same user see the refreshed profile.
	p.notify(func(l *listener) bool { return l.uid == principal.UID && l.jti != jti }, &principal)
	return principal, token, nil
}

// notify calls every matching listener outside the provider lock.
func (p *Provider) notify(match func(*listener) bool, principal *domain.Principal) {
	p.mu.Lock()
	var targets []*listener
	for _, l := range p.listeners {
		if match(l) {
			targets = append(targets, l)
		}
	}
	p.mu.Unlock()

	for _, l := range targets {
		p.deliver(l, principal)
	}
}
