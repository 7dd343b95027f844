package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fbes-dev/enrollment-api/internal/models"
)

const enrollmentColumns = `id, user_id, student_name, grade_level, section, birth_certificate_path,
form137_path, parent_name, contact_number, address, status, submitted_at, updated_at`

// EnrollmentRepository handles persistence of enrollment applications.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e LEFT JOIN users u ON u.id = e.user_id`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("e.grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.Section != nil {
		conditions = append(conditions, fmt.Sprintf("e.section = $%d", len(args)+1))
		args = append(args, *filter.Section)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.student_name) LIKE $%d OR LOWER(u.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"submitted_at": "e.submitted_at",
		"student_name": "e.student_name",
		"grade_level":  "e.grade_level",
		"status":       "e.status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.submitted_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT e.id, e.user_id, e.student_name, e.grade_level, e.section,
        e.birth_certificate_path, e.form137_path, e.parent_name, e.contact_number, e.address,
        e.status, e.submitted_at, e.updated_at, u.email AS student_email
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByUserID returns the student's live enrollment, if any.
func (r *EnrollmentRepository) FindByUserID(ctx context.Context, userID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE user_id = $1 ORDER BY submitted_at DESC LIMIT 1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsLiveForUser checks whether the student already has a pending or
// approved application.
func (r *EnrollmentRepository) ExistsLiveForUser(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE user_id = $1 AND status IN ($2, $3) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, models.EnrollmentStatusPending, models.EnrollmentStatusApproved); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check live enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.SubmittedAt.IsZero() {
		enrollment.SubmittedAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	const query = `INSERT INTO enrollments (id, user_id, student_name, grade_level, section,
        birth_certificate_path, form137_path, parent_name, contact_number, address, status, submitted_at, updated_at)
        VALUES (:id, :user_id, :student_name, :grade_level, :section, :birth_certificate_path,
        :form137_path, :parent_name, :contact_number, :address, :status, :submitted_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a pending application.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET student_name = :student_name, grade_level = :grade_level,
        section = :section, birth_certificate_path = :birth_certificate_path, form137_path = :form137_path,
        parent_name = :parent_name, contact_number = :contact_number, address = :address, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}

// UpdateStatus flips the application status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// UpdateSection moves the student to a new section, forcing approved
// status (manual reassignment implies approval).
func (r *EnrollmentRepository) UpdateSection(ctx context.Context, id string, section int) error {
	const query = `UPDATE enrollments SET section = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, section, models.EnrollmentStatusApproved, time.Now().UTC()); err != nil {
		return fmt.Errorf("reassign enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment record.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// ListBySection returns the approved students of one section.
func (r *EnrollmentRepository) ListBySection(ctx context.Context, gradeLevel string, section int) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.user_id, e.student_name, e.grade_level, e.section,
        e.birth_certificate_path, e.form137_path, e.parent_name, e.contact_number, e.address,
        e.status, e.submitted_at, e.updated_at, u.email AS student_email
        FROM enrollments e LEFT JOIN users u ON u.id = e.user_id
        WHERE e.grade_level = $1 AND e.section = $2 AND e.status = $3
        ORDER BY e.student_name ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, gradeLevel, section, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("list section enrollments: %w", err)
	}
	return enrollments, nil
}

// CountApprovedInSection counts approved students in one section.
func (r *EnrollmentRepository) CountApprovedInSection(ctx context.Context, gradeLevel string, section int) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE grade_level = $1 AND section = $2 AND status = $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, gradeLevel, section, models.EnrollmentStatusApproved); err != nil {
		return 0, fmt.Errorf("count section enrollments: %w", err)
	}
	return total, nil
}

// CountByStatus counts applications per status.
func (r *EnrollmentRepository) CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE status = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, status); err != nil {
		return 0, fmt.Errorf("count enrollments by status: %w", err)
	}
	return total, nil
}

// CountApprovedPerGrade returns approved enrollment counts grouped by grade.
func (r *EnrollmentRepository) CountApprovedPerGrade(ctx context.Context) ([]models.GradeCount, error) {
	const query = `SELECT grade_level, COUNT(*) AS count FROM enrollments WHERE status = $1
        GROUP BY grade_level ORDER BY grade_level ASC`
	var counts []models.GradeCount
	if err := r.db.SelectContext(ctx, &counts, query, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("count enrollments per grade: %w", err)
	}
	return counts, nil
}

// ListRecent returns the most recently submitted applications.
func (r *EnrollmentRepository) ListRecent(ctx context.Context, limit int) ([]models.Enrollment, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s FROM enrollments ORDER BY submitted_at DESC LIMIT %d`, enrollmentColumns, limit)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list recent enrollments: %w", err)
	}
	return enrollments, nil
}

// ListPopulatedSections returns every (grade, section) pair that holds
// approved students, with counts.
func (r *EnrollmentRepository) ListPopulatedSections(ctx context.Context) ([]models.SectionOverview, error) {
	const query = `SELECT grade_level, section, COUNT(*) AS student_count FROM enrollments
        WHERE status = $1 AND section IS NOT NULL
        GROUP BY grade_level, section ORDER BY grade_level ASC, section ASC`
	var sections []models.SectionOverview
	if err := r.db.SelectContext(ctx, &sections, query, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("list populated sections: %w", err)
	}
	return sections, nil
}
