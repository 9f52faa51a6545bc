package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

func newProfileRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProfileRepositoryGetRole(t *testing.T) {
	db, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"role"}).AddRow("teacher")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM profiles WHERE id = $1 LIMIT 1")).
		WithArgs("user-1").
		WillReturnRows(rows)

	role, err := repo.GetRole(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryListByIDs(t *testing.T) {
	db, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	name := "Ahmad"
	rows := sqlmock.NewRows([]string{"id", "full_name", "phone_number", "role", "image_path", "created_at"}).
		AddRow("user-1", name, nil, "student", "avatars/default.jpg", time.Now()).
		AddRow("user-2", nil, nil, "teacher", "avatars/default.jpg", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, phone_number, role, image_path, created_at FROM profiles WHERE id IN ($1,$2)")).
		WithArgs("user-1", "user-2").
		WillReturnRows(rows)

	profiles, err := repo.ListByIDs(context.Background(), []string{"user-1", "user-2"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	require.Equal(t, "Ahmad", profiles[0].DisplayName())
	require.Equal(t, "", profiles[1].DisplayName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryListByIDsEmpty(t *testing.T) {
	db, _, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	profiles, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, profiles)
}

func TestProfileRepositoryCountByRole(t *testing.T) {
	db, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	rows := sqlmock.NewRows([]string{"role", "count"}).
		AddRow("student", 12).
		AddRow("teacher", 3).
		AddRow("admin", 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, COUNT(*) AS count FROM profiles GROUP BY role")).
		WillReturnRows(rows)

	counts, err := repo.CountByRole(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, counts[models.RoleStudent])
	require.Equal(t, 3, counts[models.RoleTeacher])
	require.Equal(t, 1, counts[models.RoleAdmin])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryUpdateRole(t *testing.T) {
	db, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET role = $2 WHERE id = $1")).
		WithArgs("user-1", models.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateRole(context.Background(), "user-1", models.RoleAdmin)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryUpdateRoleUnknownID(t *testing.T) {
	db, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET role = $2 WHERE id = $1")).
		WithArgs("missing", models.RoleTeacher).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdateRole(context.Background(), "missing", models.RoleTeacher)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryUpdateFields(t *testing.T) {
	db, mock, cleanup := newProfileRepoMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	name := "New Name"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET full_name = $2, phone_number = $3, image_path = COALESCE($4, image_path) WHERE id = $1")).
		WithArgs("user-1", "New Name", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateFields(context.Background(), "user-1", &name, nil, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
