package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment application.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusApproved EnrollmentStatus = "APPROVED"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// Document kinds accepted on submission.
const (
	DocumentBirthCertificate = "birth_certificate"
	DocumentForm137          = "form137"
)

// Enrollment captures a student's enrollment application.
type Enrollment struct {
	ID                   string           `db:"id" json:"id"`
	UserID               string           `db:"user_id" json:"user_id"`
	StudentName          string           `db:"student_name" json:"student_name"`
	GradeLevel           string           `db:"grade_level" json:"grade_level"`
	Section              *int             `db:"section" json:"section,omitempty"`
	BirthCertificatePath string           `db:"birth_certificate_path" json:"-"`
	Form137Path          string           `db:"form137_path" json:"-"`
	ParentName           string           `db:"parent_name" json:"parent_name"`
	ContactNumber        string           `db:"contact_number" json:"contact_number"`
	Address              string           `db:"address" json:"address"`
	Status               EnrollmentStatus `db:"status" json:"status"`
	SubmittedAt          time.Time        `db:"submitted_at" json:"submitted_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with the applicant's account info.
type EnrollmentDetail struct {
	Enrollment
	StudentEmail string `db:"student_email" json:"student_email"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	Status     EnrollmentStatus
	GradeLevel string
	Section    *int
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// EnrollmentInput holds the mutable form fields of an application.
// Documents travel separately as multipart files.
type EnrollmentInput struct {
	StudentName   string `form:"student_name" validate:"required,min=2"`
	GradeLevel    string `form:"grade_level" validate:"required,oneof=1 2 3 4 5 6"`
	ParentName    string `form:"parent_name" validate:"required,min=2"`
	ContactNumber string `form:"contact_number" validate:"required,min=7"`
	Address       string `form:"address" validate:"required,min=5"`
}

// ApproveEnrollmentRequest carries the admin's professor choices.
// Grades 1 to 3 take a single professor; grades 4 to 6 take one
// professor per subject.
type ApproveEnrollmentRequest struct {
	ProfessorID       string            `json:"professor_id"`
	SubjectProfessors map[string]string `json:"subject_professors"`
}

// RejectEnrollmentRequest carries an optional rejection reason.
type RejectEnrollmentRequest struct {
	Reason string `json:"reason"`
}

// ReassignEnrollmentRequest moves an approved student to another section.
type ReassignEnrollmentRequest struct {
	Section int `json:"section" validate:"required,min=1"`
}

// SubjectEnrollment links an approved enrollment to a professor for a subject.
type SubjectEnrollment struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Subject      string    `db:"subject" json:"subject"`
	ProfessorID  string    `db:"professor_id" json:"professor_id"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// SubjectEnrollmentDetail enriches SubjectEnrollment with professor info.
type SubjectEnrollmentDetail struct {
	SubjectEnrollment
	ProfessorName string `db:"professor_name" json:"professor_name"`
}
