package teams

import (
	"context"
	"fmt"
	"strings"

	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/storage/postgres"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

// ListMembers retrieves all members of a team
func (s *PostgresService) ListMembers(ctx context.Context, teamID int64) ([]*Member, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check team: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("team %d: %w", teamID, storage.ErrNotFound)
	}

	query := `
		SELECT id, team_id, user_nip, created_at, updated_at
		FROM members
		WHERE team_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(&member.ID, &member.TeamID, &member.UserNIP, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// AddMember adds a user to a team. Unknown teams or users are not found; adding
// the same user twice is a conflict.
func (s *PostgresService) AddMember(ctx context.Context, teamID int64, req AddMemberRequest) (*Member, error) {
	req.UserNIP = strings.TrimSpace(req.UserNIP)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	member := &Member{TeamID: teamID, UserNIP: req.UserNIP}
	query := `
		INSERT INTO members (team_id, user_nip)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query, teamID, req.UserNIP).
		Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to team %d: %w", req.UserNIP, teamID, postgres.MapError(err))
	}
	return member, nil
}

// RemoveMember removes a user from a team
func (s *PostgresService) RemoveMember(ctx context.Context, teamID int64, userNIP string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE team_id = $1 AND user_nip = $2`, teamID, userNIP)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if err := postgres.ExpectOne(res); err != nil {
		return fmt.Errorf("member %s of team %d: %w", userNIP, teamID, err)
	}
	return nil
}
