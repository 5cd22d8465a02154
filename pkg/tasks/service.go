package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/teamboard/pkg/projects"
	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/storage/postgres"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

const taskColumns = `id, team_id, member_id, project_id, name, description, due_date, status, for_user, created_at, updated_at`

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

var _ Service = (*PostgresService)(nil)

// Create adds a task. The member and the project must both exist and belong to
// teamID; a member or project of another team is a validation error.
func (s *PostgresService) Create(ctx context.Context, teamID, memberID, projectID int64, req CreateTaskRequest) (*Task, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ForUser = strings.TrimSpace(req.ForUser)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = projects.StatusPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var memberTeam int64
	var memberNIP string
	err = tx.QueryRowContext(ctx, `SELECT team_id, user_nip FROM members WHERE id = $1`, memberID).Scan(&memberTeam, &memberNIP)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	var projectTeam int64
	err = tx.QueryRowContext(ctx, `SELECT team_id FROM projects WHERE id = $1`, projectID).Scan(&projectTeam)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", projectID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}

	mismatch := validation.Errors{}
	if memberTeam != teamID {
		mismatch["member_id"] = fmt.Sprintf("member %d does not belong to team %d", memberID, teamID)
	}
	if projectTeam != teamID {
		mismatch["project_id"] = fmt.Sprintf("project %d does not belong to team %d", projectID, teamID)
	}
	if len(mismatch) > 0 {
		return nil, mismatch
	}

	if req.ForUser == "" {
		req.ForUser = memberNIP
	}

	query := `
		INSERT INTO tasks (team_id, member_id, project_id, name, description, due_date, status, for_user)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns
	task, err := scanTask(tx.QueryRowContext(ctx, query,
		teamID, memberID, projectID, req.Name, req.Description, req.DueDate, req.Status, req.ForUser))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", postgres.MapError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task: %w", err)
	}
	return task, nil
}

// List returns every task
func (s *PostgresService) List(ctx context.Context) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Get retrieves a task by ID
func (s *PostgresService) Get(ctx context.Context, id int64) (*Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", id, postgres.MapError(err))
	}
	return task, nil
}

// Update applies the non-nil fields of req. Team, member and project are fixed
// at creation.
func (s *PostgresService) Update(ctx context.Context, id int64, req UpdateTaskRequest) (*Task, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE tasks
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    due_date = COALESCE($4, due_date),
		    status = COALESCE($5, status),
		    for_user = COALESCE($6, for_user),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + taskColumns
	task, err := scanTask(s.db.QueryRowContext(ctx, query,
		id, req.Name, req.Description, req.DueDate, req.Status, req.ForUser))
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, postgres.MapError(err))
	}
	return task, nil
}

// Delete removes a task
func (s *PostgresService) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	if err := postgres.ExpectOne(res); err != nil {
		return fmt.Errorf("task %d: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*Task, error) {
	t := &Task{}
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.TeamID, &t.MemberID, &t.ProjectID, &t.Name, &t.Description,
		&due, &t.Status, &t.ForUser, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return t, nil
}
