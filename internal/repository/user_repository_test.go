package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userTestColumns = []string{
	"id", "email", "password_hash", "full_name", "role", "email_verified", "active",
	"failed_login_attempts", "lockout_until", "last_password_change", "password_history",
	"assigned_grade_level", "assigned_section", "assigned_subject", "assigned_room",
	"last_login", "created_at", "updated_at",
}

func userRow(now time.Time) []driver.Value {
	return []driver.Value{
		"u1", "student@mail.test", "hash", "Juan Cruz", string(models.RoleStudent), true, true,
		0, nil, nil, []byte(`["hash"]`),
		nil, nil, nil, nil,
		nil, now, now,
	}
}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userTestColumns).AddRow(userRow(now)...)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("Student@Mail.Test").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Student@Mail.Test")
	require.NoError(t, err)
	assert.Equal(t, "student@mail.test", user.Email)
	assert.Equal(t, models.HashList{"hash"}, user.PasswordHistory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordLoginFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	until := time.Now().Add(30 * time.Minute)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET failed_login_attempts = $2, lockout_until = $3")).
		WithArgs("u1", 0, &until, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordLoginFailure(context.Background(), "u1", 0, &until)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordClearsLockout(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("u1", "new-hash", models.HashList{"old-hash", "new-hash"}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), "u1", "new-hash", models.HashList{"old-hash", "new-hash"}, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProfessorsByPrimaryGradeExcludesProfessor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userTestColumns).AddRow(
		"p1", "prof@school.local", "hash", "Maria Santos", string(models.RoleProfessor), true, true,
		0, nil, nil, []byte(`[]`),
		"2", 1, nil, "Room 201 - Building B",
		nil, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("assigned_grade_level = $2 AND id <> $3")).
		WithArgs(models.RoleProfessor, "2", "p9").
		WillReturnRows(rows)

	professors, err := repo.ListProfessorsByPrimaryGrade(context.Background(), "2", "p9")
	require.NoError(t, err)
	require.Len(t, professors, 1)
	assert.Equal(t, "p1", professors[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePrimaryAssignment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	grade := "4"
	section := 2
	subject := "Math"
	room := "Room 402 - Building B"
	mock.ExpectExec("UPDATE users SET assigned_grade_level").
		WithArgs("p1", &grade, &section, &subject, &room, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePrimaryAssignment(context.Background(), "p1", &grade, &section, &subject, &room)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
