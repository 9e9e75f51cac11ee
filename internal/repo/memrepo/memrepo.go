// Package memrepo implements the repo interfaces in memory for development
// and tests. It enforces the same owner predicate as the Postgres policies.
package memrepo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/repo"
)

var (
	_ repo.SessionRepo = (*SessionRepo)(nil)
	_ repo.UserRepo    = (*UserRepo)(nil)
)

// SessionRepo stores sessions in a slice guarded by a mutex.
type SessionRepo struct {
	mu       sync.Mutex
	sessions []domain.Session

	// IndexMissing makes every query fail with domain.ErrIndexMissing,
	// mimicking a store that lacks the history index.
	IndexMissing bool
}

// NewSessionRepo creates an empty in-memory session store.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

func (r *SessionRepo) Create(_ context.Context, caller string, s domain.Session) (domain.Session, error) {
	if caller == "" || s.UserID != caller {
		return domain.Session{}, fmt.Errorf("memrepo.SessionRepo.Create: %w", domain.ErrPermissionDenied)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC()
	r.sessions = append(r.sessions, s)
	return s, nil
}

func (r *SessionRepo) ListByUser(_ context.Context, caller string) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IndexMissing {
		return nil, fmt.Errorf("memrepo.SessionRepo.ListByUser: %w", domain.ErrIndexMissing)
	}
	return r.owned(caller), nil
}

func (r *SessionRepo) ListByUserPaged(_ context.Context, caller string, p domain.PaginationParams) ([]domain.Session, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.IndexMissing {
		return nil, 0, fmt.Errorf("memrepo.SessionRepo.ListByUserPaged: %w", domain.ErrIndexMissing)
	}
	all := r.owned(caller)
	total := int64(len(all))
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], total, nil
}

func (r *SessionRepo) GetByID(_ context.Context, caller string, id uuid.UUID) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := lo.Find(r.sessions, func(s domain.Session) bool {
		return s.ID == id && s.UserID == caller
	})
	if !ok {
		return domain.Session{}, fmt.Errorf("memrepo.SessionRepo.GetByID: %w", domain.ErrNotFound)
	}
	return s, nil
}

func (r *SessionRepo) VerifyIndex(context.Context) error {
	if r.IndexMissing {
		return fmt.Errorf("memrepo.SessionRepo.VerifyIndex: %w: %s", domain.ErrIndexMissing, repo.HistoryIndex)
	}
	return nil
}

// owned returns caller's sessions newest first. r.mu must be held.
func (r *SessionRepo) owned(caller string) []domain.Session {
	out := lo.Filter(r.sessions, func(s domain.Session, _ int) bool {
		return caller != "" && s.UserID == caller
	})
	slices.SortStableFunc(out, func(a, b domain.Session) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// UserRepo stores identity records keyed by UID.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewUserRepo creates an empty in-memory user store.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]domain.User)}
}

func (r *UserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, fmt.Errorf("memrepo.UserRepo.Create: %w", domain.ErrEmailAlreadyInUse)
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.UID] = u
	return u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("memrepo.UserRepo.GetByEmail: %w", domain.ErrNotFound)
}

func (r *UserRepo) GetByID(_ context.Context, uid string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[uid]
	if !ok {
		return domain.User{}, fmt.Errorf("memrepo.UserRepo.GetByID: %w", domain.ErrNotFound)
	}
	return u, nil
}
