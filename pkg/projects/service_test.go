package projects

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

var projectCols = []string{"id", "team_id", "name", "description", "due_date", "status", "created_at", "updated_at"}

func setupMock(t *testing.T) (*PostgresService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresService(db), mock
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("Done").Valid())
}

func TestCreate_DefaultsToPending(t *testing.T) {
	svc, mock := setupMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs(int64(3), "Launch", "first release", nil, "Pending").
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow(1, 3, "Launch", "first release", nil, "Pending", now, now))

	project, err := svc.Create(context.Background(), 3, CreateProjectRequest{Name: "Launch", Description: "first release"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, project.Status)
	assert.Nil(t, project.DueDate)
	assert.Equal(t, int64(3), project.TeamID)
}

func TestCreate_UnknownTeam(t *testing.T) {
	svc, mock := setupMock(t)

	mock.ExpectQuery("INSERT INTO projects").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "projects_team_id_fkey"})

	_, err := svc.Create(context.Background(), 99, CreateProjectRequest{Name: "Launch"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := setupMock(t)

	_, err := svc.Create(context.Background(), 3, CreateProjectRequest{Name: "Launch", Status: "Done"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "status")

	_, err = svc.Create(context.Background(), 3, CreateProjectRequest{})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "name")
}

func TestListByTeam(t *testing.T) {
	svc, mock := setupMock(t)
	now := time.Now().UTC()
	due := now.Add(48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE team_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow(1, 3, "Launch", "", due, "InProgress", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE team_id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(projectCols))

	projects, err := svc.ListByTeam(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].DueDate)
	assert.True(t, due.Equal(*projects[0].DueDate))

	empty, err := svc.ListByTeam(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestList(t *testing.T) {
	svc, mock := setupMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(1, 3, "A", "", nil, "Pending", now, now).
			AddRow(2, 4, "B", "", nil, "Completed", now, now))

	projects, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestGet_NotFound(t *testing.T) {
	svc, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(projectCols))

	_, err := svc.Get(context.Background(), 5)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdate_Partial(t *testing.T) {
	svc, mock := setupMock(t)
	now := time.Now().UTC()
	status := StatusCompleted

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects")).
		WithArgs(int64(1), nil, nil, nil, "Completed").
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow(1, 3, "Launch", "", nil, "Completed", now, now))

	project, err := svc.Update(context.Background(), 1, UpdateProjectRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, project.Status)
	assert.Equal(t, "Launch", project.Name)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, mock := setupMock(t)
	name := "x"

	mock.ExpectQuery("UPDATE projects").WillReturnRows(sqlmock.NewRows(projectCols))

	_, err := svc.Update(context.Background(), 9, UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.ErrorIs(t, svc.Delete(context.Background(), 2), storage.ErrNotFound)
}
