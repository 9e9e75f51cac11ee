package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// HistoryIndex is the composite index the history queries rely on.
const HistoryIndex = "sessions_user_id_created_at_idx"

// SessionRepo defines the persistence operations for Sessions.
// Every method takes the verified caller's UID; the store only lets that
// caller see or write rows it owns.
type SessionRepo interface {
	// Create inserts s and returns the persisted record. The store rejects the
	// write with domain.ErrPermissionDenied when s.UserID is not caller.
	Create(ctx context.Context, caller string, s domain.Session) (domain.Session, error)

	// ListByUser returns every session owned by caller, newest first.
	ListByUser(ctx context.Context, caller string) ([]domain.Session, error)

	// ListByUserPaged returns one page of caller's sessions and the total count.
	ListByUserPaged(ctx context.Context, caller string, p domain.PaginationParams) ([]domain.Session, int64, error)

	// GetByID returns a session owned by caller.
	// Returns domain.ErrNotFound when it is missing or owned by someone else.
	GetByID(ctx context.Context, caller string, id uuid.UUID) (domain.Session, error)

	// VerifyIndex returns domain.ErrIndexMissing when HistoryIndex is absent.
	VerifyIndex(ctx context.Context) error
}

type pgSessionRepo struct {
	db db
}

// NewSessionRepo constructs a SessionRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewSessionRepo(db db) SessionRepo {
	return &pgSessionRepo{db: db}
}

const sessionColumns = `id, user_id, prompt, response, weather, created_at`

// Create inserts a new session row and returns the full persisted record.
func (r *pgSessionRepo) Create(ctx context.Context, caller string, s domain.Session) (domain.Session, error) {
	const q = `
		INSERT INTO sessions (id, user_id, prompt, response, weather, created_at)
		VALUES (@id, @user_id, @prompt, @response, @weather, COALESCE(@created_at, now()))
		RETURNING ` + sessionColumns

	response, err := json.Marshal(s.Response)
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: encode response: %w", err)
	}
	var weather any
	if s.Weather != nil {
		b, err := json.Marshal(s.Weather)
		if err != nil {
			return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: encode weather: %w", err)
		}
		weather = b
	}
	id := s.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := pgtype.Timestamptz{Time: s.CreatedAt, Valid: !s.CreatedAt.IsZero()}

	args := pgx.NamedArgs{
		"id":         id,
		"user_id":    s.UserID,
		"prompt":     s.Prompt,
		"response":   response,
		"weather":    weather, // nil becomes NULL
		"created_at": createdAt,
	}

	var out domain.Session
	err = asOwner(ctx, r.db, caller, func(tx pgx.Tx) error {
		var err error
		out, err = scanSession(tx.QueryRow(ctx, q, args))
		return err
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: %w", mapError(err))
	}
	return out, nil
}

// ListByUser returns all of caller's sessions ordered by created_at descending.
func (r *pgSessionRepo) ListByUser(ctx context.Context, caller string) ([]domain.Session, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = @user_id
		ORDER BY created_at DESC`

	var sessions []domain.Session
	err := asOwner(ctx, r.db, caller, func(tx pgx.Tx) error {
		var err error
		sessions, err = collectSessions(ctx, tx, q, pgx.NamedArgs{"user_id": caller})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.SessionRepo.ListByUser: %w", mapError(err))
	}
	return sessions, nil
}

// ListByUserPaged returns one page of caller's sessions, newest first.
func (r *pgSessionRepo) ListByUserPaged(ctx context.Context, caller string, p domain.PaginationParams) ([]domain.Session, int64, error) {
	const countQ = `SELECT count(*) FROM sessions WHERE user_id = @user_id`
	const q = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = @user_id
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	var (
		sessions []domain.Session
		total    int64
	)
	err := asOwner(ctx, r.db, caller, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": caller}).Scan(&total); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		var err error
		sessions, err = collectSessions(ctx, tx, q, pgx.NamedArgs{
			"user_id": caller,
			"limit":   p.Limit,
			"offset":  p.Offset(),
		})
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.SessionRepo.ListByUserPaged: %w", mapError(err))
	}
	return sessions, total, nil
}

// GetByID retrieves one of caller's sessions by primary key.
func (r *pgSessionRepo) GetByID(ctx context.Context, caller string, id uuid.UUID) (domain.Session, error) {
	const q = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = @id AND user_id = @user_id`

	var out domain.Session
	err := asOwner(ctx, r.db, caller, func(tx pgx.Tx) error {
		var err error
		out, err = scanSession(tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": caller}))
		return err
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.GetByID: %w", mapError(err))
	}
	return out, nil
}

// VerifyIndex checks pg_indexes for the history index.
func (r *pgSessionRepo) VerifyIndex(ctx context.Context) error {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM pg_indexes
			WHERE tablename = 'sessions' AND indexname = @name
		)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": HistoryIndex}).Scan(&ok); err != nil {
		return fmt.Errorf("repo.SessionRepo.VerifyIndex: %w", err)
	}
	if !ok {
		return fmt.Errorf("repo.SessionRepo.VerifyIndex: %w: %s", domain.ErrIndexMissing, HistoryIndex)
	}
	return nil
}

func collectSessions(ctx context.Context, tx pgx.Tx, q string, args pgx.NamedArgs) ([]domain.Session, error) {
	rows, err := tx.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return sessions, nil
}

// scanSession maps a single database row into a domain.Session,
// decoding the jsonb columns.
func scanSession(s scanner) (domain.Session, error) {
	var (
		out       domain.Session
		id        pgtype.UUID
		response  []byte
		weather   []byte
		createdAt time.Time
	)

	if err := s.Scan(&id, &out.UserID, &out.Prompt, &response, &weather, &createdAt); err != nil {
		return domain.Session{}, err
	}

	out.ID = uuid.UUID(id.Bytes)
	out.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal(response, &out.Response); err != nil {
		return domain.Session{}, fmt.Errorf("decode response: %w", err)
	}
	if weather != nil {
		var w domain.Weather
		if err := json.Unmarshal(weather, &w); err != nil {
			return domain.Session{}, fmt.Errorf("decode weather: %w", err)
		}
		out.Weather = &w
	}
	return out, nil
}
