package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/avatars"
	"github.com/platinummonkey/teamboard/pkg/projects"
	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/tasks"
	"github.com/platinummonkey/teamboard/pkg/teams"
)

const testNIP = "198501012010011"

// tokenFor returns the bearer token fakeAuth accepts for role
func tokenFor(role auth.Role) string {
	return "token-" + string(role)
}

// fakeAuth accepts tokenFor(role) for every role and otherwise returns the
// configured results
type fakeAuth struct {
	mu sync.Mutex

	loginResult *auth.LoginResult
	loginErr    error
	signupErr   error
	updateErr   error

	lastSignup auth.SignupRequest
	lastUpdate auth.UpdateUserRequest
	updates    int
}

func (f *fakeAuth) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginResult != nil {
		return f.loginResult, nil
	}
	return nil, auth.ErrInvalidCredentials
}

func (f *fakeAuth) Signup(_ context.Context, req auth.SignupRequest) (*auth.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSignup = req
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &auth.AuthResult{
		User:  auth.PublicUser{NIP: req.NIP, Name: req.Name, Email: req.Email, Role: auth.RoleUser, Status: auth.StatusActive},
		Token: "signup-token",
	}, nil
}

func (f *fakeAuth) ListUsers(context.Context) ([]auth.PublicUser, error) {
	return []auth.PublicUser{{NIP: testNIP, Role: auth.RoleUser}}, nil
}

func (f *fakeAuth) GetUser(_ context.Context, nip string) (*auth.PublicUser, error) {
	if nip != testNIP {
		return nil, storage.ErrNotFound
	}
	return &auth.PublicUser{NIP: nip, Role: auth.RoleUser, Status: auth.StatusActive}, nil
}

func (f *fakeAuth) UpdatePassword(context.Context, string, auth.UpdatePasswordRequest) error {
	return nil
}

func (f *fakeAuth) UpdateUser(_ context.Context, nip string, req auth.UpdateUserRequest) (*auth.PublicUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.lastUpdate = req
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &auth.PublicUser{NIP: nip}, nil
}

func (f *fakeAuth) VerifyToken(token string) (*auth.Claims, error) {
	for _, role := range []auth.Role{auth.RoleSuperAdmin, auth.RoleAdmin, auth.RoleUser} {
		if token == tokenFor(role) {
			return &auth.Claims{
				Role:             role,
				Status:           auth.StatusActive,
				RegisteredClaims: jwt.RegisteredClaims{Subject: testNIP},
			}, nil
		}
	}
	return nil, auth.ErrInvalidToken
}

type fakeAvatars struct {
	mu      sync.Mutex
	uploads []avatars.Upload
	stored  map[string]*avatars.Avatar
}

func newFakeAvatars() *fakeAvatars {
	return &fakeAvatars{stored: make(map[string]*avatars.Avatar)}
}

func (f *fakeAvatars) Get(_ context.Context, nip string) (*avatars.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.stored[nip]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeAvatars) Upload(_ context.Context, nip string, u avatars.Upload) (*avatars.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(u.Content) == 0 {
		return nil, avatars.ErrInvalidUpload
	}
	if _, ok := f.stored[nip]; ok {
		return nil, storage.ErrConflict
	}
	f.uploads = append(f.uploads, u)
	a := &avatars.Avatar{UserNIP: nip, Filename: "1_" + u.Filename, MimeType: u.MimeType, Data: avatars.EncodeDataURI(u.MimeType, u.Content)}
	f.stored[nip] = a
	return a, nil
}

func (f *fakeAvatars) Replace(_ context.Context, nip string, u avatars.Upload) (*avatars.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stored[nip]; !ok {
		return nil, storage.ErrNotFound
	}
	a := &avatars.Avatar{UserNIP: nip, Filename: "2_" + u.Filename, MimeType: u.MimeType, Data: avatars.EncodeDataURI(u.MimeType, u.Content)}
	f.stored[nip] = a
	return a, nil
}

func (f *fakeAvatars) Delete(_ context.Context, nip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stored[nip]; !ok {
		return storage.ErrNotFound
	}
	delete(f.stored, nip)
	return nil
}

type fakeTeams struct {
	lastOwner string
	err       error
}

func (f *fakeTeams) CreateTeam(_ context.Context, owner string, req teams.CreateTeamRequest) (*teams.Team, error) {
	f.lastOwner = owner
	if f.err != nil {
		return nil, f.err
	}
	return &teams.Team{ID: 1, Name: req.Name, OwnerNIP: owner, CreatedAt: time.Now()}, nil
}

func (f *fakeTeams) GetTeam(_ context.Context, id int64) (*teams.Team, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &teams.Team{ID: id, Name: "Platform"}, nil
}

func (f *fakeTeams) ListTeams(context.Context) ([]*teams.Team, error) {
	return []*teams.Team{}, f.err
}

func (f *fakeTeams) UpdateTeam(_ context.Context, id int64, req teams.UpdateTeamRequest) (*teams.Team, error) {
	return &teams.Team{ID: id, Name: req.Name}, f.err
}

func (f *fakeTeams) DeleteTeam(context.Context, int64) error { return f.err }

func (f *fakeTeams) ListMembers(context.Context, int64) ([]*teams.Member, error) {
	return []*teams.Member{}, f.err
}

func (f *fakeTeams) AddMember(_ context.Context, teamID int64, req teams.AddMemberRequest) (*teams.Member, error) {
	return &teams.Member{ID: 1, TeamID: teamID, UserNIP: req.UserNIP}, f.err
}

func (f *fakeTeams) RemoveMember(context.Context, int64, string) error { return f.err }

type fakeProjects struct {
	lastTeam int64
}

func (f *fakeProjects) Create(_ context.Context, teamID int64, req projects.CreateProjectRequest) (*projects.Project, error) {
	f.lastTeam = teamID
	return &projects.Project{ID: 1, TeamID: teamID, Name: req.Name, Status: projects.StatusPending}, nil
}

func (f *fakeProjects) List(context.Context) ([]*projects.Project, error) {
	return []*projects.Project{}, nil
}

func (f *fakeProjects) ListByTeam(_ context.Context, teamID int64) ([]*projects.Project, error) {
	f.lastTeam = teamID
	return []*projects.Project{}, nil
}

func (f *fakeProjects) Get(_ context.Context, id int64) (*projects.Project, error) {
	return &projects.Project{ID: id}, nil
}

func (f *fakeProjects) Update(_ context.Context, id int64, _ projects.UpdateProjectRequest) (*projects.Project, error) {
	return &projects.Project{ID: id}, nil
}

func (f *fakeProjects) Delete(context.Context, int64) error { return nil }

type fakeTasks struct {
	lastIDs [3]int64
}

func (f *fakeTasks) Create(_ context.Context, teamID, memberID, projectID int64, req tasks.CreateTaskRequest) (*tasks.Task, error) {
	f.lastIDs = [3]int64{teamID, memberID, projectID}
	return &tasks.Task{ID: 1, TeamID: teamID, MemberID: memberID, ProjectID: projectID, Name: req.Name}, nil
}

func (f *fakeTasks) List(context.Context) ([]*tasks.Task, error) { return []*tasks.Task{}, nil }

func (f *fakeTasks) Get(_ context.Context, id int64) (*tasks.Task, error) {
	return &tasks.Task{ID: id}, nil
}

func (f *fakeTasks) Update(_ context.Context, id int64, _ tasks.UpdateTaskRequest) (*tasks.Task, error) {
	return &tasks.Task{ID: id}, nil
}

func (f *fakeTasks) Delete(context.Context, int64) error { return nil }

type fixture struct {
	server   *Server
	auth     *fakeAuth
	avatars  *fakeAvatars
	teams    *fakeTeams
	projects *fakeProjects
	tasks    *fakeTasks
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		auth:     &fakeAuth{},
		avatars:  newFakeAvatars(),
		teams:    &fakeTeams{},
		projects: &fakeProjects{},
		tasks:    &fakeTasks{},
	}
	deps := Deps{
		Auth:     f.auth,
		Avatars:  f.avatars,
		Teams:    f.teams,
		Projects: f.projects,
		Tasks:    f.tasks,
	}
	for _, m := range mutate {
		m(&deps)
	}
	srv, err := NewServer(deps)
	require.NoError(t, err)
	f.server = srv
	return f
}
