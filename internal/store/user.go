package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"alertdesk.app/intake/core/db"
	"alertdesk.app/intake/internal/model"
)

type userStore struct {
	q db.DBTX
}

func newUserStore(q db.DBTX) UserStore {
	return &userStore{q: q}
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT id, name, email, is_system, created_at, updated_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpsertSystemUser inserts user as a system account, or returns the existing
// row for its email. The existing id is kept so earlier tickets stay attributed.
func (s *userStore) UpsertSystemUser(ctx context.Context, user *model.User) (*model.User, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, is_system)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET is_system = TRUE, updated_at = now()
		RETURNING id, name, email, is_system, created_at, updated_at`,
		user.ID, user.Name, user.Email,
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.IsSystem, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
