package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

// sectionCapacity is the seat limit for automatic allocation. Manual
// reassignment uses a higher ceiling enforced in the service layer.
const sectionCapacity = 35

// SectionCapacityRepository tracks per-grade section fill levels.
type SectionCapacityRepository struct {
	db *sqlx.DB
}

// NewSectionCapacityRepository constructs the repository.
func NewSectionCapacityRepository(db *sqlx.DB) *SectionCapacityRepository {
	return &SectionCapacityRepository{db: db}
}

// AssignSection claims a seat for the grade and returns the section the
// student landed in. The row is locked for the duration of the
// transaction so concurrent submissions cannot overfill a section.
func (r *SectionCapacityRepository) AssignSection(ctx context.Context, gradeLevel string) (section int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin section assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	capacity, err := lockCapacityRow(ctx, tx, gradeLevel)
	if err != nil {
		return 0, err
	}

	section = capacity.Allocate(sectionCapacity)

	const update = `UPDATE section_capacities SET current_section = $2, students_in_current_section = $3 WHERE grade_level = $1`
	if _, err = tx.ExecContext(ctx, update, gradeLevel, capacity.CurrentSection, capacity.StudentsInCurrentSection); err != nil {
		return 0, fmt.Errorf("update section capacity: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit section assignment: %w", err)
	}
	return section, nil
}

// ReleaseSeat returns a seat to the grade's current section, used when a
// pending application is withdrawn or moved to another grade.
func (r *SectionCapacityRepository) ReleaseSeat(ctx context.Context, gradeLevel string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seat release: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	capacity, err := lockCapacityRow(ctx, tx, gradeLevel)
	if err != nil {
		return err
	}

	if capacity.StudentsInCurrentSection > 0 {
		capacity.StudentsInCurrentSection--
	}

	const update = `UPDATE section_capacities SET students_in_current_section = $2 WHERE grade_level = $1`
	if _, err = tx.ExecContext(ctx, update, gradeLevel, capacity.StudentsInCurrentSection); err != nil {
		return fmt.Errorf("update section capacity: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seat release: %w", err)
	}
	return nil
}

// lockCapacityRow selects the grade row FOR UPDATE, inserting it lazily
// on first use.
func lockCapacityRow(ctx context.Context, tx *sqlx.Tx, gradeLevel string) (*models.SectionCapacity, error) {
	const query = `SELECT grade_level, current_section, students_in_current_section
        FROM section_capacities WHERE grade_level = $1 FOR UPDATE`
	var capacity models.SectionCapacity
	err := tx.GetContext(ctx, &capacity, query, gradeLevel)
	if err == nil {
		return &capacity, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("lock section capacity: %w", err)
	}

	const insert = `INSERT INTO section_capacities (grade_level, current_section, students_in_current_section)
        VALUES ($1, 1, 0)`
	if _, err := tx.ExecContext(ctx, insert, gradeLevel); err != nil {
		return nil, fmt.Errorf("init section capacity: %w", err)
	}
	return &models.SectionCapacity{GradeLevel: gradeLevel, CurrentSection: 1, StudentsInCurrentSection: 0}, nil
}
