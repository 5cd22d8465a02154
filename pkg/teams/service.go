package teams

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/platinummonkey/teamboard/pkg/storage/postgres"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

var _ Service = (*PostgresService)(nil)

// CreateTeam creates a team; the owner must be an existing user
func (s *PostgresService) CreateTeam(ctx context.Context, ownerNIP string, req CreateTeamRequest) (*Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	team := &Team{Name: req.Name, OwnerNIP: ownerNIP}
	query := `
		INSERT INTO teams (name, owner_nip)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query, team.Name, team.OwnerNIP).
		Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", postgres.MapError(err))
	}
	return team, nil
}

// GetTeam retrieves a team by ID
func (s *PostgresService) GetTeam(ctx context.Context, id int64) (*Team, error) {
	query := `
		SELECT id, name, owner_nip, created_at, updated_at
		FROM teams
		WHERE id = $1
	`
	team := &Team{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&team.ID, &team.Name, &team.OwnerNIP, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("team %d: %w", id, postgres.MapError(err))
	}
	return team, nil
}

// ListTeams returns every team, oldest first
func (s *PostgresService) ListTeams(ctx context.Context) ([]*Team, error) {
	query := `
		SELECT id, name, owner_nip, created_at, updated_at
		FROM teams
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []*Team{}
	for rows.Next() {
		team := &Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.OwnerNIP, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// UpdateTeam renames a team
func (s *PostgresService) UpdateTeam(ctx context.Context, id int64, req UpdateTeamRequest) (*Team, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE teams
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, owner_nip, created_at, updated_at
	`
	team := &Team{}
	err := s.db.QueryRowContext(ctx, query, id, req.Name).
		Scan(&team.ID, &team.Name, &team.OwnerNIP, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update team %d: %w", id, postgres.MapError(err))
	}
	return team, nil
}

// DeleteTeam removes a team along with its members, projects and tasks
func (s *PostgresService) DeleteTeam(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, postgres.MapError(err))
	}
	if err := postgres.ExpectOne(res); err != nil {
		return fmt.Errorf("team %d: %w", id, err)
	}
	return nil
}
