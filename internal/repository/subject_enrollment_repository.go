package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

// SubjectEnrollmentRepository links approved enrollments to professors.
type SubjectEnrollmentRepository struct {
	db *sqlx.DB
}

// NewSubjectEnrollmentRepository constructs the repository.
func NewSubjectEnrollmentRepository(db *sqlx.DB) *SubjectEnrollmentRepository {
	return &SubjectEnrollmentRepository{db: db}
}

// RecordApproval inserts the subject rows and flips the enrollment to
// approved in one transaction. Approval creates either a single
// "All Subjects" row or one row per subject; a roster with subject rows
// for a still-pending enrollment would corrupt retries, so all or
// nothing.
func (r *SubjectEnrollmentRepository) RecordApproval(ctx context.Context, enrollmentID string, records []models.SubjectEnrollment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO subject_enrollments (id, enrollment_id, subject, professor_id, enrolled_at)
        VALUES (:id, :enrollment_id, :subject, :professor_id, :enrolled_at)`
	now := time.Now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].EnrolledAt.IsZero() {
			records[i].EnrolledAt = now
		}
		if _, err = tx.NamedExecContext(ctx, insert, records[i]); err != nil {
			return fmt.Errorf("insert subject enrollment: %w", err)
		}
	}

	const approve = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, approve, enrollmentID, models.EnrollmentStatusApproved, now); err != nil {
		return fmt.Errorf("approve enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit approval: %w", err)
	}
	return nil
}

// ListByEnrollment returns the subject rows of one enrollment with
// professor names.
func (r *SubjectEnrollmentRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.SubjectEnrollmentDetail, error) {
	const query = `SELECT se.id, se.enrollment_id, se.subject, se.professor_id, se.enrolled_at,
        u.full_name AS professor_name
        FROM subject_enrollments se LEFT JOIN users u ON u.id = se.professor_id
        WHERE se.enrollment_id = $1 ORDER BY se.subject ASC`
	var records []models.SubjectEnrollmentDetail
	if err := r.db.SelectContext(ctx, &records, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list subject enrollments: %w", err)
	}
	return records, nil
}

// DeleteByEnrollment removes every subject row of one enrollment.
func (r *SubjectEnrollmentRepository) DeleteByEnrollment(ctx context.Context, enrollmentID string) error {
	const query = `DELETE FROM subject_enrollments WHERE enrollment_id = $1`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID); err != nil {
		return fmt.Errorf("delete subject enrollments: %w", err)
	}
	return nil
}

// DeleteByProfessor removes every subject row taught by one professor.
func (r *SubjectEnrollmentRepository) DeleteByProfessor(ctx context.Context, professorID string) error {
	const query = `DELETE FROM subject_enrollments WHERE professor_id = $1`
	if _, err := r.db.ExecContext(ctx, query, professorID); err != nil {
		return fmt.Errorf("delete professor subject enrollments: %w", err)
	}
	return nil
}

// ListStudentsByProfessor returns the approved students a professor teaches.
func (r *SubjectEnrollmentRepository) ListStudentsByProfessor(ctx context.Context, professorID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT DISTINCT e.id, e.user_id, e.student_name, e.grade_level, e.section,
        e.birth_certificate_path, e.form137_path, e.parent_name, e.contact_number, e.address,
        e.status, e.submitted_at, e.updated_at, u.email AS student_email
        FROM subject_enrollments se
        JOIN enrollments e ON e.id = se.enrollment_id
        LEFT JOIN users u ON u.id = e.user_id
        WHERE se.professor_id = $1 AND e.status = $2
        ORDER BY e.grade_level ASC, e.section ASC, e.student_name ASC`
	var students []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &students, query, professorID, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("list professor students: %w", err)
	}
	return students, nil
}
