package tasks

import (
	"context"
	"time"

	"github.com/platinummonkey/teamboard/pkg/projects"
)

// Task is a unit of work inside a project, assigned through a team member
type Task struct {
	ID          int64           `json:"id"`
	TeamID      int64           `json:"team_id"`
	MemberID    int64           `json:"member_id"`
	ProjectID   int64           `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Status      projects.Status `json:"status"`
	ForUser     string          `json:"for_user"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateTaskRequest is the payload for a new task. ForUser defaults to the
// member's user and Status to Pending.
type CreateTaskRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Status      projects.Status `json:"status,omitempty" validate:"omitempty,oneof=Pending InProgress Completed"`
	ForUser     string          `json:"for_user,omitempty"`
}

// UpdateTaskRequest changes task fields; nil fields are left unchanged
type UpdateTaskRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description,omitempty"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Status      *projects.Status `json:"status,omitempty" validate:"omitempty,oneof=Pending InProgress Completed"`
	ForUser     *string          `json:"for_user,omitempty" validate:"omitempty,min=1"`
}

// Service manages tasks
type Service interface {
	Create(ctx context.Context, teamID, memberID, projectID int64, req CreateTaskRequest) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, id int64, req UpdateTaskRequest) (*Task, error)
	Delete(ctx context.Context, id int64) error
}
