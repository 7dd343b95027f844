package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/fbes-dev/enrollment-api/internal/models"
	"github.com/fbes-dev/enrollment-api/internal/rooms"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
	"github.com/fbes-dev/enrollment-api/pkg/export"
)

type rosterReader interface {
	ListBySection(ctx context.Context, gradeLevel string, section int) ([]models.EnrollmentDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.Enrollment, error)
}

type subjectReader interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.SubjectEnrollmentDetail, error)
}

// ExportService renders rosters and enrollment summaries to CSV and PDF.
type ExportService struct {
	enrollments rosterReader
	subjects    subjectReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	schoolName  string
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(enrollments rosterReader, subjects subjectReader, schoolName string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		subjects:    subjects,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		schoolName:  schoolName,
		logger:      logger,
	}
}

// SectionRosterCSV renders the approved students of one section.
func (s *ExportService) SectionRosterCSV(ctx context.Context, gradeLevel string, section int) ([]byte, string, error) {
	students, err := s.enrollments.ListBySection(ctx, gradeLevel, section)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section students")
	}

	headers := []string{"Student Name", "Email", "Grade Level", "Section", "Room", "Parent/Guardian", "Contact Number"}
	rows := make([]map[string]string, 0, len(students))
	room := rooms.ForSection(gradeLevel, section)
	for _, student := range students {
		rows = append(rows, map[string]string{
			"Student Name":    student.StudentName,
			"Email":           student.StudentEmail,
			"Grade Level":     student.GradeLevel,
			"Section":         strconv.Itoa(section),
			"Room":            room,
			"Parent/Guardian": student.ParentName,
			"Contact Number":  student.ContactNumber,
		})
	}

	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	filename := fmt.Sprintf("grade%s_section%d_roster.csv", gradeLevel, section)
	return data, filename, nil
}

// EnrollmentSummaryPDF renders the student's own enrollment as a
// printable summary.
func (s *ExportService) EnrollmentSummaryPDF(ctx context.Context, userID string) ([]byte, string, error) {
	enrollment, err := s.enrollments.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no enrollment on file")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	section := "Unassigned"
	room := "To be announced"
	if enrollment.Section != nil {
		section = strconv.Itoa(*enrollment.Section)
		room = rooms.ForSection(enrollment.GradeLevel, *enrollment.Section)
	}

	doc := export.Summary{
		Title:    s.schoolName,
		Subtitle: "Enrollment Summary",
		Fields: []export.Field{
			{Label: "Student Name", Value: enrollment.StudentName},
			{Label: "Grade Level", Value: enrollment.GradeLevel},
			{Label: "Section", Value: section},
			{Label: "Room", Value: room},
			{Label: "Building", Value: rooms.BuildingForGrade(enrollment.GradeLevel)},
			{Label: "Status", Value: string(enrollment.Status)},
			{Label: "Parent/Guardian", Value: enrollment.ParentName},
			{Label: "Contact Number", Value: enrollment.ContactNumber},
			{Label: "Submitted", Value: enrollment.SubmittedAt.Format("January 2, 2006")},
		},
	}

	subjects, err := s.subjects.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject enrollments")
	}
	if len(subjects) > 0 {
		table := export.Dataset{Headers: []string{"Subject", "Professor"}}
		for _, record := range subjects {
			table.Rows = append(table.Rows, map[string]string{
				"Subject":   record.Subject,
				"Professor": record.ProfessorName,
			})
		}
		doc.Table = table
	}

	data, err := s.pdf.RenderSummary(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render summary")
	}
	return data, "enrollment_summary.pdf", nil
}
