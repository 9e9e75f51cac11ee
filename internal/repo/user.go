package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// UserRepo defines the persistence operations for identity records.
type UserRepo interface {
	// Create inserts u. Returns domain.ErrEmailAlreadyInUse when the email
	// (case-insensitively) is taken.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// GetByEmail looks a user up case-insensitively.
	// Returns domain.ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// GetByID returns domain.ErrNotFound if no such user exists.
	GetByID(ctx context.Context, uid string) (domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `uid, email, display_name, password_hash, created_at`

func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (uid, email, display_name, password_hash)
		VALUES (@uid, @email, @display_name, @password_hash)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"uid":           u.UID,
		"email":         u.Email,
		"display_name":  u.DisplayName,
		"password_hash": u.PasswordHash,
	}

	out, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", domain.ErrEmailAlreadyInUse)
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapError(err))
	}
	return out, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower(@email)`

	out, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", mapError(err))
	}
	return out, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, uid string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE uid = @uid`

	out, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"uid": uid}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", mapError(err))
	}
	return out, nil
}

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.UID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
