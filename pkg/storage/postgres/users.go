package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/platinummonkey/teamboard/pkg/auth"
)

const userColumns = `nip, name, email, nohp, password_hash, role, status, created_at, updated_at`

// UserStore implements auth.UserStore
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

var _ auth.UserStore = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (nip, name, email, nohp, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		user.NIP, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role, user.Status,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", MapError(err))
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *UserStore) GetByNIP(ctx context.Context, nip string) (*auth.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE nip = $1`, nip)
}

func (s *UserStore) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, nip`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*auth.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update writes profile fields; the password hash is left alone
func (s *UserStore) Update(ctx context.Context, user *auth.User) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, nohp = $4, role = $5, status = $6, updated_at = NOW()
		WHERE nip = $1
		RETURNING updated_at`,
		user.NIP, user.Name, user.Email, user.Phone, user.Role, user.Status,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", MapError(err))
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, nip, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE nip = $1`,
		nip, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", MapError(err))
	}
	return ExpectOne(res)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg string) (*auth.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, MapError(err)
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.NIP, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
