package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/aeronavigator/internal/domain"
	"github.com/Domenick1991/aeronavigator/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

const uniqueViolation = "23505"

type PGUserRepository struct {
	db *storage.Gateway
}

func NewUserRepository(db *storage.Gateway) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	created, err := storage.QueryOne[domain.User](ctx, r.db, `INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, is_admin, created_at`,
		user.Name, domain.NormalizeEmail(user.Email), user.PasswordHash, user.IsAdmin)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	*user = *created
	return nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := storage.QueryOne[domain.User](ctx, r.db, `SELECT id, name, email, password_hash, is_admin, created_at FROM users WHERE lower(email)=$1`, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
