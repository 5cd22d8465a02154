package projects

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/platinummonkey/teamboard/pkg/storage/postgres"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

const projectColumns = `id, team_id, name, description, due_date, status, created_at, updated_at`

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

var _ Service = (*PostgresService)(nil)

// Create adds a project to a team. An unknown team is storage.ErrNotFound.
func (s *PostgresService) Create(ctx context.Context, teamID int64, req CreateProjectRequest) (*Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = StatusPending
	}

	query := `
		INSERT INTO projects (team_id, name, description, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns
	project, err := scanProject(s.db.QueryRowContext(ctx, query,
		teamID, req.Name, req.Description, req.DueDate, req.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to create project in team %d: %w", teamID, postgres.MapError(err))
	}
	return project, nil
}

// List returns every project
func (s *PostgresService) List(ctx context.Context) ([]*Project, error) {
	return s.list(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id ASC`)
}

// ListByTeam returns the projects of one team; a team without projects yields an
// empty list
func (s *PostgresService) ListByTeam(ctx context.Context, teamID int64) ([]*Project, error) {
	return s.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE team_id = $1 ORDER BY id ASC`, teamID)
}

// Get retrieves a project by ID
func (s *PostgresService) Get(ctx context.Context, id int64) (*Project, error) {
	project, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", id, postgres.MapError(err))
	}
	return project, nil
}

// Update applies the non-nil fields of req
func (s *PostgresService) Update(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE projects
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    due_date = COALESCE($4, due_date),
		    status = COALESCE($5, status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns
	project, err := scanProject(s.db.QueryRowContext(ctx, query,
		id, req.Name, req.Description, req.DueDate, req.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", id, postgres.MapError(err))
	}
	return project, nil
}

// Delete removes a project and its tasks
func (s *PostgresService) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	if err := postgres.ExpectOne(res); err != nil {
		return fmt.Errorf("project %d: %w", id, err)
	}
	return nil
}

func (s *PostgresService) list(ctx context.Context, query string, args ...any) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*Project, error) {
	p := &Project{}
	var due sql.NullTime
	if err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &due, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		p.DueDate = &due.Time
	}
	return p, nil
}
