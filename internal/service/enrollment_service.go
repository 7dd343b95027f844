package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fbes-dev/enrollment-api/internal/models"
	"github.com/fbes-dev/enrollment-api/internal/rooms"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
)

// reassignCapacity is the seat ceiling for manual section reassignment.
// Deliberately higher than the automatic allocation limit so admins can
// squeeze transfers into otherwise-full sections.
const reassignCapacity = 40

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindByUserID(ctx context.Context, userID string) (*models.Enrollment, error)
	ExistsLiveForUser(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	UpdateSection(ctx context.Context, id string, section int) error
	Delete(ctx context.Context, id string) error
	ListBySection(ctx context.Context, gradeLevel string, section int) ([]models.EnrollmentDetail, error)
	CountApprovedInSection(ctx context.Context, gradeLevel string, section int) (int, error)
	ListPopulatedSections(ctx context.Context) ([]models.SectionOverview, error)
}

type subjectEnrollmentRepository interface {
	RecordApproval(ctx context.Context, enrollmentID string, records []models.SubjectEnrollment) error
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.SubjectEnrollmentDetail, error)
	DeleteByEnrollment(ctx context.Context, enrollmentID string) error
}

type capacityAllocator interface {
	AssignSection(ctx context.Context, gradeLevel string) (int, error)
	ReleaseSeat(ctx context.Context, gradeLevel string) error
}

type documentStore interface {
	SaveUpload(docType, originalName string, r io.Reader, size int64) (string, error)
	Delete(relPath string) error
}

type approvalValidator interface {
	ValidateApprovalChoice(ctx context.Context, professorID, gradeLevel, subject string) (*models.User, error)
	OptionsForSection(ctx context.Context, gradeLevel string, section int) (*ProfessorOptions, error)
	ScheduleDescription(ctx context.Context, professorID, gradeLevel string, section int) string
}

type enrollmentMailer interface {
	SendApprovalNotice(notice ApprovalNotice)
	SendRejectionNotice(name, email, reason string)
}

type accountReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type enrollmentObserver interface {
	EnrollmentSubmitted()
	EnrollmentApproved()
}

// Upload is a document handed in with a submission.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// EnrollmentService orchestrates the application workflow from
// submission through approval.
type EnrollmentService struct {
	repo       enrollmentRepository
	subjects   subjectEnrollmentRepository
	capacities capacityAllocator
	documents  documentStore
	staffing   approvalValidator
	accounts   accountReader
	mailer     enrollmentMailer
	metrics    enrollmentObserver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, subjects subjectEnrollmentRepository, capacities capacityAllocator, documents documentStore, staffing approvalValidator, accounts accountReader, mailer enrollmentMailer, metrics enrollmentObserver, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:       repo,
		subjects:   subjects,
		capacities: capacities,
		documents:  documents,
		staffing:   staffing,
		accounts:   accounts,
		mailer:     mailer,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// Get loads one enrollment with its subject rows.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, []models.SubjectEnrollmentDetail, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	subjects, err := s.subjects.ListByEnrollment(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject enrollments")
	}
	return enrollment, subjects, nil
}

// MyEnrollment returns the student's own application, if any.
func (s *EnrollmentService) MyEnrollment(ctx context.Context, userID string) (*models.Enrollment, []models.SubjectEnrollmentDetail, error) {
	enrollment, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no enrollment on file")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	subjects, err := s.subjects.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject enrollments")
	}
	return enrollment, subjects, nil
}

// Submit files a new application. Both documents are stored first, a
// seat is claimed, and only then does the record persist; any failure
// along the way unwinds what came before it.
func (s *EnrollmentService) Submit(ctx context.Context, userID string, input models.EnrollmentInput, birthCertificate, form137 Upload) (*models.Enrollment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	exists, err := s.repo.ExistsLiveForUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you already have a pending or approved enrollment")
	}

	birthPath, err := s.documents.SaveUpload(models.DocumentBirthCertificate, birthCertificate.Filename, birthCertificate.Reader, birthCertificate.Size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("birth certificate: %v", err))
	}
	formPath, err := s.documents.SaveUpload(models.DocumentForm137, form137.Filename, form137.Reader, form137.Size)
	if err != nil {
		s.deleteDocument(birthPath)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("form 137: %v", err))
	}

	section, err := s.capacities.AssignSection(ctx, input.GradeLevel)
	if err != nil {
		s.deleteDocument(birthPath)
		s.deleteDocument(formPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign section")
	}

	enrollment := &models.Enrollment{
		UserID:               userID,
		StudentName:          input.StudentName,
		GradeLevel:           input.GradeLevel,
		Section:              &section,
		BirthCertificatePath: birthPath,
		Form137Path:          formPath,
		ParentName:           input.ParentName,
		ContactNumber:        input.ContactNumber,
		Address:              input.Address,
		Status:               models.EnrollmentStatusPending,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		s.deleteDocument(birthPath)
		s.deleteDocument(formPath)
		if releaseErr := s.capacities.ReleaseSeat(ctx, input.GradeLevel); releaseErr != nil {
			s.logger.Error("failed to release seat after create failure", zap.Error(releaseErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save enrollment")
	}

	if s.metrics != nil {
		s.metrics.EnrollmentSubmitted()
	}
	s.logger.Info("enrollment submitted",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("grade_level", enrollment.GradeLevel),
		zap.Int("section", section),
	)
	return enrollment, nil
}

// Edit updates a pending application. Replacement documents are stored
// first and the seat moves only once the row is updated, so a failure at
// any step leaves the capacity counters where they were.
func (s *EnrollmentService) Edit(ctx context.Context, id, userID string, input models.EnrollmentInput, birthCertificate, form137 *Upload) (*models.Enrollment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not your enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending enrollments can be edited")
	}

	var newBirthPath, newFormPath string
	if birthCertificate != nil {
		newBirthPath, err = s.documents.SaveUpload(models.DocumentBirthCertificate, birthCertificate.Filename, birthCertificate.Reader, birthCertificate.Size)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("birth certificate: %v", err))
		}
	}
	if form137 != nil {
		newFormPath, err = s.documents.SaveUpload(models.DocumentForm137, form137.Filename, form137.Reader, form137.Size)
		if err != nil {
			s.deleteDocument(newBirthPath)
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("form 137: %v", err))
		}
	}

	oldGrade := enrollment.GradeLevel
	gradeChanged := input.GradeLevel != oldGrade
	if gradeChanged {
		section, err := s.capacities.AssignSection(ctx, input.GradeLevel)
		if err != nil {
			s.deleteDocument(newBirthPath)
			s.deleteDocument(newFormPath)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign section")
		}
		enrollment.GradeLevel = input.GradeLevel
		enrollment.Section = &section
	}

	var oldBirthPath, oldFormPath string
	if newBirthPath != "" {
		oldBirthPath = enrollment.BirthCertificatePath
		enrollment.BirthCertificatePath = newBirthPath
	}
	if newFormPath != "" {
		oldFormPath = enrollment.Form137Path
		enrollment.Form137Path = newFormPath
	}

	enrollment.StudentName = input.StudentName
	enrollment.ParentName = input.ParentName
	enrollment.ContactNumber = input.ContactNumber
	enrollment.Address = input.Address

	if err := s.repo.Update(ctx, enrollment); err != nil {
		s.deleteDocument(newBirthPath)
		s.deleteDocument(newFormPath)
		if gradeChanged {
			if releaseErr := s.capacities.ReleaseSeat(ctx, input.GradeLevel); releaseErr != nil {
				s.logger.Error("failed to return seat after update failure", zap.Error(releaseErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}

	if gradeChanged {
		if releaseErr := s.capacities.ReleaseSeat(ctx, oldGrade); releaseErr != nil {
			s.logger.Warn("failed to release seat in previous grade", zap.Error(releaseErr))
		}
	}
	s.deleteDocument(oldBirthPath)
	s.deleteDocument(oldFormPath)
	return enrollment, nil
}

// Reset lets the student withdraw a pending application, deleting the
// record and its documents and returning the seat.
func (s *EnrollmentService) Reset(ctx context.Context, id, userID string) error {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if enrollment.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "not your enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending enrollments can be reset")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.deleteDocument(enrollment.BirthCertificatePath)
	s.deleteDocument(enrollment.Form137Path)
	if err := s.capacities.ReleaseSeat(ctx, enrollment.GradeLevel); err != nil {
		s.logger.Warn("failed to release seat on reset", zap.Error(err))
	}
	return nil
}

// Remove deletes a student's record regardless of status, reopening
// their eligibility to enroll.
func (s *EnrollmentService) Remove(ctx context.Context, id string) error {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.subjects.DeleteByEnrollment(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject enrollments")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.deleteDocument(enrollment.BirthCertificatePath)
	s.deleteDocument(enrollment.Form137Path)
	return nil
}

// Approve flips a pending application to approved, records the subject
// enrollments and notifies the student. The professor choices are
// validated against the staffing rules first; nothing persists when any
// choice is invalid.
func (s *EnrollmentService) Approve(ctx context.Context, id string, req models.ApproveEnrollmentRequest) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending enrollments can be approved")
	}
	if enrollment.Section == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment has no section")
	}

	var records []models.SubjectEnrollment
	var lines []SubjectScheduleLine

	if lowerGrade(enrollment.GradeLevel) {
		if req.ProfessorID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a professor is required for grades 1 to 3")
		}
		professor, err := s.staffing.ValidateApprovalChoice(ctx, req.ProfessorID, enrollment.GradeLevel, "")
		if err != nil {
			return nil, err
		}
		records = append(records, models.SubjectEnrollment{
			EnrollmentID: id,
			Subject:      models.AllSubjectsLabel,
			ProfessorID:  professor.ID,
		})
		lines = append(lines, SubjectScheduleLine{
			Subject:   models.AllSubjectsLabel,
			Professor: professor.FullName,
			Schedule:  s.staffing.ScheduleDescription(ctx, professor.ID, enrollment.GradeLevel, *enrollment.Section),
		})
	} else {
		for _, subject := range models.Subjects {
			professorID, ok := req.SubjectProfessors[subject]
			if !ok || professorID == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("a professor is required for %s", subject))
			}
			professor, err := s.staffing.ValidateApprovalChoice(ctx, professorID, enrollment.GradeLevel, subject)
			if err != nil {
				return nil, err
			}
			records = append(records, models.SubjectEnrollment{
				EnrollmentID: id,
				Subject:      subject,
				ProfessorID:  professor.ID,
			})
			lines = append(lines, SubjectScheduleLine{
				Subject:   subject,
				Professor: professor.FullName,
				Schedule:  s.staffing.ScheduleDescription(ctx, professor.ID, enrollment.GradeLevel, *enrollment.Section),
			})
		}
	}

	if err := s.subjects.RecordApproval(ctx, id, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve enrollment")
	}
	enrollment.Status = models.EnrollmentStatusApproved

	if s.metrics != nil {
		s.metrics.EnrollmentApproved()
	}
	s.notifyApproval(ctx, enrollment, lines)
	return enrollment, nil
}

// Reject flips a pending application to rejected and notifies the student.
func (s *EnrollmentService) Reject(ctx context.Context, id string, req models.RejectEnrollmentRequest) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "only pending enrollments can be rejected")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.EnrollmentStatusRejected); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject enrollment")
	}
	enrollment.Status = models.EnrollmentStatusRejected

	if s.mailer != nil {
		if email := s.studentEmail(ctx, enrollment.UserID); email != "" {
			s.mailer.SendRejectionNotice(enrollment.StudentName, email, req.Reason)
		}
	}
	return enrollment, nil
}

// Reassign moves an approved student to another section of the same
// grade. The target must hold fewer than the reassignment ceiling.
func (s *EnrollmentService) Reassign(ctx context.Context, id string, req models.ReassignEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment payload")
	}
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountApprovedInSection(ctx, enrollment.GradeLevel, req.Section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section capacity")
	}
	if count >= reassignCapacity {
		return nil, appErrors.Clone(appErrors.ErrSectionFull,
			fmt.Sprintf("grade %s section %d already holds %d students", enrollment.GradeLevel, req.Section, count))
	}

	if err := s.repo.UpdateSection(ctx, id, req.Section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign enrollment")
	}
	section := req.Section
	enrollment.Section = &section
	enrollment.Status = models.EnrollmentStatusApproved
	return enrollment, nil
}

// ProfessorOptions lists the eligible professors for approving one
// enrollment.
func (s *EnrollmentService) ProfessorOptions(ctx context.Context, id string) (*ProfessorOptions, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	section := 0
	if enrollment.Section != nil {
		section = *enrollment.Section
	}
	return s.staffing.OptionsForSection(ctx, enrollment.GradeLevel, section)
}

// SectionRoster returns the approved students of one section.
func (s *EnrollmentService) SectionRoster(ctx context.Context, gradeLevel string, section int) ([]models.EnrollmentDetail, error) {
	students, err := s.repo.ListBySection(ctx, gradeLevel, section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section students")
	}
	return students, nil
}

// SectionsOverview returns every populated section with its room.
func (s *EnrollmentService) SectionsOverview(ctx context.Context) ([]models.SectionOverview, error) {
	sections, err := s.repo.ListPopulatedSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	for i := range sections {
		sections[i].Room = rooms.ForSection(sections[i].GradeLevel, sections[i].Section)
	}
	return sections, nil
}

// DocumentPath resolves the stored path of one uploaded document.
func (s *EnrollmentService) DocumentPath(ctx context.Context, id, kind string) (*models.Enrollment, string, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	switch kind {
	case models.DocumentBirthCertificate:
		return enrollment, enrollment.BirthCertificatePath, nil
	case models.DocumentForm137:
		return enrollment, enrollment.Form137Path, nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrNotFound, "unknown document kind")
}

func (s *EnrollmentService) load(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) notifyApproval(ctx context.Context, enrollment *models.Enrollment, lines []SubjectScheduleLine) {
	if s.mailer == nil || enrollment.Section == nil {
		return
	}
	email := s.studentEmail(ctx, enrollment.UserID)
	if email == "" {
		return
	}
	s.mailer.SendApprovalNotice(ApprovalNotice{
		ToName:     enrollment.StudentName,
		ToAddress:  email,
		GradeLevel: enrollment.GradeLevel,
		Section:    *enrollment.Section,
		Room:       rooms.ForSection(enrollment.GradeLevel, *enrollment.Section),
		Building:   rooms.BuildingForGrade(enrollment.GradeLevel),
		Subjects:   lines,
	})
}

func (s *EnrollmentService) studentEmail(ctx context.Context, userID string) string {
	user, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load student for notification", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return user.Email
}

func (s *EnrollmentService) deleteDocument(path string) {
	if path == "" {
		return
	}
	if err := s.documents.Delete(path); err != nil {
		s.logger.Warn("failed to delete document", zap.String("path", path), zap.Error(err))
	}
}
