package models

import "time"

// GradeCount is the number of approved enrollments in one grade level.
type GradeCount struct {
	GradeLevel string `db:"grade_level" json:"grade_level"`
	Count      int    `db:"count" json:"count"`
}

// DashboardStats aggregates the admin dashboard figures.
type DashboardStats struct {
	TotalEnrollments    int          `json:"total_enrollments"`
	PendingEnrollments  int          `json:"pending_enrollments"`
	ApprovedEnrollments int          `json:"approved_enrollments"`
	RejectedEnrollments int          `json:"rejected_enrollments"`
	TotalProfessors     int          `json:"total_professors"`
	EnrollmentsPerGrade []GradeCount `json:"enrollments_per_grade"`
	RecentEnrollments   []Enrollment `json:"recent_enrollments"`
	GeneratedAt         time.Time    `json:"generated_at"`
}
