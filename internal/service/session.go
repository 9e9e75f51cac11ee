// Package service contains the business logic for the WanderAI API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/repo"
)

// SessionService persists and lists trip history. Every operation takes the
// owner explicitly; nothing is read from ambient state.
type SessionService struct {
	repo   repo.SessionRepo
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionService constructs a SessionService backed by the provided SessionRepo.
func NewSessionService(r repo.SessionRepo, logger *slog.Logger) *SessionService {
	return &SessionService{repo: r, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for CreatedAt. Tests use it for
// deterministic ordering.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Save records one (prompt, itinerary, weather) tuple for owner.
// Returns domain.ErrNotAuthenticated when owner is nil.
func (s *SessionService) Save(ctx context.Context, owner *domain.Principal, prompt string, it domain.Itinerary, w *domain.Weather) (domain.Session, error) {
	if owner == nil || owner.UID == "" {
		return domain.Session{}, fmt.Errorf("service.SessionService.Save: %w", domain.ErrNotAuthenticated)
	}

	session := domain.Session{
		ID:        uuid.New(),
		UserID:    owner.UID,
		Prompt:    prompt,
		Response:  it,
		Weather:   w,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	out, err := s.repo.Create(ctx, owner.UID, session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.SessionService.Save: %w", err)
	}
	return out, nil
}

// ListByOwner returns owner's sessions, newest first. A nil owner and a
// missing history index both yield an empty list.
func (s *SessionService) ListByOwner(ctx context.Context, owner *domain.Principal) ([]domain.Session, error) {
	if owner == nil || owner.UID == "" {
		return []domain.Session{}, nil
	}

	sessions, err := s.repo.ListByUser(ctx, owner.UID)
	if errors.Is(err, domain.ErrIndexMissing) {
		s.logger.Error("history unavailable; returning empty history", "uid", owner.UID, "error", err)
		return []domain.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service.SessionService.ListByOwner: %w", err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return sessions, nil
}

// ListByOwnerPaged returns one page of owner's history and the total count.
func (s *SessionService) ListByOwnerPaged(ctx context.Context, owner *domain.Principal, p domain.PaginationParams) ([]domain.Session, int64, error) {
	if owner == nil || owner.UID == "" {
		return []domain.Session{}, 0, nil
	}

	sessions, total, err := s.repo.ListByUserPaged(ctx, owner.UID, p)
	if errors.Is(err, domain.ErrIndexMissing) {
		s.logger.Error("history unavailable; returning empty history", "uid", owner.UID, "error", err)
		return []domain.Session{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("service.SessionService.ListByOwnerPaged: %w", err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	return sessions, total, nil
}

// GetByID returns one of owner's sessions. Sessions of other owners are
// reported as domain.ErrNotFound.
func (s *SessionService) GetByID(ctx context.Context, owner *domain.Principal, id uuid.UUID) (domain.Session, error) {
	if owner == nil || owner.UID == "" {
		return domain.Session{}, fmt.Errorf("service.SessionService.GetByID: %w", domain.ErrNotAuthenticated)
	}

	session, err := s.repo.GetByID(ctx, owner.UID, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.SessionService.GetByID: %w", err)
	}
	return session, nil
}

// VerifyIndex reports whether the history index exists.
func (s *SessionService) VerifyIndex(ctx context.Context) error {
	if err := s.repo.VerifyIndex(ctx); err != nil {
		return fmt.Errorf("service.SessionService.VerifyIndex: %w", err)
	}
	return nil
}
