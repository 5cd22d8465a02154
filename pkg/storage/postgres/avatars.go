package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/platinummonkey/teamboard/pkg/avatars"
)

// AvatarStore keeps avatars as data URIs in the avatars table
type AvatarStore struct {
	db *sql.DB
}

// NewAvatarStore creates a PostgreSQL avatar store
func NewAvatarStore(db *sql.DB) *AvatarStore {
	return &AvatarStore{db: db}
}

var _ avatars.Store = (*AvatarStore)(nil)

func (s *AvatarStore) Get(ctx context.Context, nip string) (*avatars.Avatar, error) {
	var a avatars.Avatar
	err := s.db.QueryRowContext(ctx, `
		SELECT user_nip, filename, mime_type, data, created_at, updated_at
		FROM avatars WHERE user_nip = $1`, nip,
	).Scan(&a.UserNIP, &a.Filename, &a.MimeType, &a.Data, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, MapError(err)
	}
	return &a, nil
}

func (s *AvatarStore) Create(ctx context.Context, a *avatars.Avatar) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO avatars (user_nip, filename, mime_type, data)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		a.UserNIP, a.Filename, a.MimeType, a.Data,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert avatar: %w", MapError(err))
	}
	return nil
}

func (s *AvatarStore) Replace(ctx context.Context, a *avatars.Avatar) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE avatars
		SET filename = $2, mime_type = $3, data = $4, updated_at = NOW()
		WHERE user_nip = $1
		RETURNING created_at, updated_at`,
		a.UserNIP, a.Filename, a.MimeType, a.Data,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to replace avatar: %w", MapError(err))
	}
	return nil
}

func (s *AvatarStore) Delete(ctx context.Context, nip string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM avatars WHERE user_nip = $1`, nip)
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", MapError(err))
	}
	return ExpectOne(res)
}
