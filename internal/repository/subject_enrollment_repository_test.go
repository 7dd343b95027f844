package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

func TestRecordApprovalCommitsRowsAndStatusTogether(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subject_enrollments")).
		WithArgs(sqlmock.AnyArg(), "e1", models.AllSubjectsLabel, "prof-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("e1", models.EnrollmentStatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordApproval(context.Background(), "e1", []models.SubjectEnrollment{
		{EnrollmentID: "e1", Subject: models.AllSubjectsLabel, ProfessorID: "prof-1"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordApprovalRollsBackWhenStatusUpdateFails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subject_enrollments")).
		WithArgs(sqlmock.AnyArg(), "e1", "Math", "prof-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.RecordApproval(context.Background(), "e1", []models.SubjectEnrollment{
		{EnrollmentID: "e1", Subject: "Math", ProfessorID: "prof-1"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
