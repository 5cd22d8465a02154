package projects

import (
	"context"
	"time"
)

// Status is the progress state shared by projects and tasks
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Project belongs to exactly one team
type Project struct {
	ID          int64      `json:"id"`
	TeamID      int64      `json:"team_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateProjectRequest is the payload for a new project. Status defaults to Pending.
type CreateProjectRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      Status     `json:"status,omitempty" validate:"omitempty,oneof=Pending InProgress Completed"`
}

// UpdateProjectRequest changes project fields; nil fields are left unchanged
type UpdateProjectRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=Pending InProgress Completed"`
}

// Service manages projects
type Service interface {
	Create(ctx context.Context, teamID int64, req CreateProjectRequest) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	Update(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error)
	Delete(ctx context.Context, id int64) error
}
