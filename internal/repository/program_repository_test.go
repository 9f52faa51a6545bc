package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

func newProgramRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestProgramRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	price := 150000.0
	rows := sqlmock.NewRows([]string{"id", "name", "description", "image_path", "price", "mosque_id", "teacher_id", "created_at"}).
		AddRow("prog-1", "Juz Amma", nil, nil, price, "mosque-1", "teacher-1", time.Now()).
		AddRow("prog-2", "Tahfiz Intensive", "Full-time track", "thumbnails/x.jpg", nil, "mosque-2", "teacher-2", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, image_path, price, mosque_id, teacher_id, created_at FROM programs ORDER BY created_at DESC")).
		WillReturnRows(rows)

	programs, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)
	require.Equal(t, "Juz Amma", programs[0].Name)
	require.NotNil(t, programs[0].Price)
	require.Nil(t, programs[1].Price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, image_path, price, mosque_id, teacher_id, created_at FROM programs WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectExec("INSERT INTO programs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	program := &models.Program{Name: "Juz Amma", MosqueID: "mosque-1", TeacherID: "teacher-1"}
	err := repo.Create(context.Background(), program)
	require.NoError(t, err)
	require.NotEmpty(t, program.ID)
	require.False(t, program.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCount(t *testing.T) {
	db, mock, cleanup := newProgramRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM programs")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
