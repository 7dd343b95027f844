package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

const userColumns = `id, email, password_hash, full_name, role, email_verified, active,
failed_login_attempts, lockout_until, last_password_change, password_history,
assigned_grade_level, assigned_section, assigned_subject, assigned_room,
last_login, created_at, updated_at`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.PasswordHistory == nil {
		user.PasswordHistory = models.HashList{}
	}
	const query = `INSERT INTO users (id, email, password_hash, full_name, role, email_verified, active,
        failed_login_attempts, lockout_until, last_password_change, password_history,
        assigned_grade_level, assigned_section, assigned_subject, assigned_room,
        last_login, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :full_name, :role, :email_verified, :active,
        :failed_login_attempts, :lockout_until, :last_password_change, :password_history,
        :assigned_grade_level, :assigned_section, :assigned_subject, :assigned_room,
        :last_login, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListProfessors returns every professor with their secondary assignment count.
func (r *UserRepository) ListProfessors(ctx context.Context) ([]models.ProfessorSummary, error) {
	query := fmt.Sprintf(`SELECT %s,
        (SELECT COUNT(*) FROM professor_section_assignments a WHERE a.professor_id = users.id) AS assignment_count
        FROM users WHERE role = $1 ORDER BY full_name ASC`, userColumns)
	var professors []models.ProfessorSummary
	if err := r.db.SelectContext(ctx, &professors, query, models.RoleProfessor); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

// ListProfessorsByPrimaryGrade returns professors whose primary assignment
// sits in the given grade level, optionally excluding one professor.
func (r *UserRepository) ListProfessorsByPrimaryGrade(ctx context.Context, gradeLevel, excludeID string) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 AND assigned_grade_level = $2`, userColumns)
	args := []interface{}{models.RoleProfessor, gradeLevel}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	var professors []models.User
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, fmt.Errorf("list professors by grade: %w", err)
	}
	return professors, nil
}

// CountByRole returns the number of users holding a role.
func (r *UserRepository) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, role); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return total, nil
}

// RecordLoginFailure stores the failed attempt counter and, once the
// threshold is hit, the lockout deadline.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	const query = `UPDATE users SET failed_login_attempts = $2, lockout_until = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, attempts, lockoutUntil, time.Now().UTC()); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	return nil
}

// ResetLoginState clears the failure counter and lockout after a
// successful login.
func (r *UserRepository) ResetLoginState(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE users SET failed_login_attempts = 0, lockout_until = NULL, last_login = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("reset login state: %w", err)
	}
	return nil
}

// UpdatePassword stores a new hash along with the refreshed history and
// clears any lockout state.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, history models.HashList, ts time.Time) error {
	const query = `UPDATE users SET password_hash = $2, password_history = $3, last_password_change = $4,
        failed_login_attempts = 0, lockout_until = NULL, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, history, ts); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdatePrimaryAssignment sets the professor's primary teaching assignment.
func (r *UserRepository) UpdatePrimaryAssignment(ctx context.Context, id string, gradeLevel *string, section *int, subject *string, room *string) error {
	const query = `UPDATE users SET assigned_grade_level = $2, assigned_section = $3, assigned_subject = $4,
        assigned_room = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, gradeLevel, section, subject, room, time.Now().UTC()); err != nil {
		return fmt.Errorf("update primary assignment: %w", err)
	}
	return nil
}
