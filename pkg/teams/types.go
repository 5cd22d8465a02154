package teams

import (
	"context"
	"time"
)

// Team groups members and owns projects
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerNIP  string    `json:"owner_nip"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member links a user to a team. A user appears at most once per team.
type Member struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	UserNIP   string    `json:"user_nip"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTeamRequest creates a team owned by the caller
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UpdateTeamRequest renames a team
type UpdateTeamRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// AddMemberRequest adds a user to a team
type AddMemberRequest struct {
	UserNIP string `json:"user_nip" validate:"required"`
}

// Service manages teams and their members. Missing teams, members or users are
// reported as storage.ErrNotFound; a duplicate membership as storage.ErrConflict.
type Service interface {
	CreateTeam(ctx context.Context, ownerNIP string, req CreateTeamRequest) (*Team, error)
	GetTeam(ctx context.Context, id int64) (*Team, error)
	ListTeams(ctx context.Context) ([]*Team, error)
	UpdateTeam(ctx context.Context, id int64, req UpdateTeamRequest) (*Team, error)
	DeleteTeam(ctx context.Context, id int64) error

	ListMembers(ctx context.Context, teamID int64) ([]*Member, error)
	AddMember(ctx context.Context, teamID int64, req AddMemberRequest) (*Member, error)
	RemoveMember(ctx context.Context, teamID int64, userNIP string) error
}
