package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

const assignmentColumns = `id, professor_id, grade_level, section, subject, assigned_room,
day_of_week, start_time, end_time, created_at`

// AssignmentRepository persists secondary section assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create persists a new section assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.SectionAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO professor_section_assignments (id, professor_id, grade_level, section,
        subject, assigned_room, day_of_week, start_time, end_time, created_at)
        VALUES (:id, :professor_id, :grade_level, :section, :subject, :assigned_room,
        :day_of_week, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID returns a section assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.SectionAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM professor_section_assignments WHERE id = $1`, assignmentColumns)
	var assignment models.SectionAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByProfessor returns every secondary assignment of one professor.
func (r *AssignmentRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.SectionAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM professor_section_assignments WHERE professor_id = $1
        ORDER BY grade_level ASC, section ASC`, assignmentColumns)
	var assignments []models.SectionAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor assignments: %w", err)
	}
	return assignments, nil
}

// ListByGrade returns every secondary assignment in one grade level.
func (r *AssignmentRepository) ListByGrade(ctx context.Context, gradeLevel string) ([]models.SectionAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM professor_section_assignments WHERE grade_level = $1`, assignmentColumns)
	var assignments []models.SectionAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, gradeLevel); err != nil {
		return nil, fmt.Errorf("list grade assignments: %w", err)
	}
	return assignments, nil
}

// ListBySection returns every secondary assignment in one section.
func (r *AssignmentRepository) ListBySection(ctx context.Context, gradeLevel string, section int) ([]models.SectionAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM professor_section_assignments WHERE grade_level = $1 AND section = $2`, assignmentColumns)
	var assignments []models.SectionAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, gradeLevel, section); err != nil {
		return nil, fmt.Errorf("list section assignments: %w", err)
	}
	return assignments, nil
}

// Delete removes a section assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM professor_section_assignments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// DeleteByProfessor removes every secondary assignment of one professor.
func (r *AssignmentRepository) DeleteByProfessor(ctx context.Context, professorID string) error {
	const query = `DELETE FROM professor_section_assignments WHERE professor_id = $1`
	if _, err := r.db.ExecContext(ctx, query, professorID); err != nil {
		return fmt.Errorf("delete professor assignments: %w", err)
	}
	return nil
}

// TakenSections returns the distinct sections of a grade that already
// hold at least one assignment.
func (r *AssignmentRepository) TakenSections(ctx context.Context, gradeLevel string) ([]int, error) {
	const query = `SELECT DISTINCT section FROM professor_section_assignments WHERE grade_level = $1 ORDER BY section ASC`
	var sections []int
	if err := r.db.SelectContext(ctx, &sections, query, gradeLevel); err != nil {
		return nil, fmt.Errorf("list taken sections: %w", err)
	}
	return sections, nil
}
