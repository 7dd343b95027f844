package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fbes-dev/enrollment-api/internal/models"
	"github.com/fbes-dev/enrollment-api/internal/rooms"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
)

// maxProfessorsPerSection caps the staff of one grade 4-6 section: one
// professor per subject, six subjects.
const maxProfessorsPerSection = 6

type professorRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	ListProfessors(ctx context.Context) ([]models.ProfessorSummary, error)
	ListProfessorsByPrimaryGrade(ctx context.Context, gradeLevel, excludeID string) ([]models.User, error)
	UpdatePrimaryAssignment(ctx context.Context, id string, gradeLevel *string, section *int, subject *string, room *string) error
}

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.SectionAssignment) error
	FindByID(ctx context.Context, id string) (*models.SectionAssignment, error)
	ListByProfessor(ctx context.Context, professorID string) ([]models.SectionAssignment, error)
	ListByGrade(ctx context.Context, gradeLevel string) ([]models.SectionAssignment, error)
	ListBySection(ctx context.Context, gradeLevel string, section int) ([]models.SectionAssignment, error)
	Delete(ctx context.Context, id string) error
	DeleteByProfessor(ctx context.Context, professorID string) error
	TakenSections(ctx context.Context, gradeLevel string) ([]int, error)
}

type professorRosterStore interface {
	DeleteByProfessor(ctx context.Context, professorID string) error
	ListStudentsByProfessor(ctx context.Context, professorID string) ([]models.EnrollmentDetail, error)
}

type conflictObserver interface {
	ScheduleConflictRejected()
}

// ProfessorOptions lists the professors an admin may pick during
// approval for one grade and section.
type ProfessorOptions struct {
	GradeLevel string                       `json:"grade_level"`
	Section    int                          `json:"section"`
	Homeroom   []models.UserInfo            `json:"homeroom,omitempty"`
	PerSubject map[string][]models.UserInfo `json:"per_subject,omitempty"`
}

// AssignmentService enforces the staffing rules: who may teach which
// grade, section and subject, and when.
type AssignmentService struct {
	professors  professorRepository
	assignments assignmentStore
	roster      professorRosterStore
	metrics     conflictObserver
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(professors professorRepository, assignments assignmentStore, roster professorRosterStore, metrics conflictObserver, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		professors:  professors,
		assignments: assignments,
		roster:      roster,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// CreateProfessor registers a professor account. Professors never go
// through email verification; the admin vouches for them.
func (s *AssignmentService) CreateProfessor(ctx context.Context, req models.CreateProfessorRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}
	if _, err := s.professors.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an account with this email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		Email:           req.Email,
		PasswordHash:    string(hash),
		FullName:        req.FullName,
		Role:            models.RoleProfessor,
		EmailVerified:   true,
		Active:          true,
		PasswordHistory: models.HashList{string(hash)},
	}
	if err := s.professors.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor")
	}
	return &models.UserInfo{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.Role}, nil
}

// ListProfessors returns every professor with assignment counts.
func (s *AssignmentService) ListProfessors(ctx context.Context) ([]models.ProfessorSummary, error) {
	professors, err := s.professors.ListProfessors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	return professors, nil
}

// GetProfessor loads one professor.
func (s *AssignmentService) GetProfessor(ctx context.Context, id string) (*models.User, error) {
	return s.loadProfessor(ctx, id)
}

// UpdatePrimaryAssignment sets the professor's primary grade, section
// and (for grades 4 to 6) subject, after running the staffing rules.
func (s *AssignmentService) UpdatePrimaryAssignment(ctx context.Context, professorID string, req models.UpdateProfessorAssignmentRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	professor, err := s.loadProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}

	if err := s.checkPlacement(ctx, professor, req.GradeLevel, req.Section, req.Subject); err != nil {
		return nil, err
	}

	room := rooms.ForSection(req.GradeLevel, req.Section)
	grade := req.GradeLevel
	section := req.Section
	if err := s.professors.UpdatePrimaryAssignment(ctx, professorID, &grade, &section, req.Subject, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}

	professor.AssignedGradeLevel = &grade
	professor.AssignedSection = &section
	professor.AssignedSubject = req.Subject
	professor.AssignedRoom = &room
	return professor, nil
}

// AssignGradeLevel sets only the professor's grade level, clearing any
// finer-grained primary assignment.
func (s *AssignmentService) AssignGradeLevel(ctx context.Context, professorID, gradeLevel string) (*models.User, error) {
	if !validGradeLevel(gradeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level must be 1 to 6")
	}
	professor, err := s.loadProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}

	if lowerGrade(gradeLevel) {
		if err := s.checkLowerGradeExclusive(ctx, gradeLevel, professorID); err != nil {
			return nil, err
		}
	}

	grade := gradeLevel
	if err := s.professors.UpdatePrimaryAssignment(ctx, professorID, &grade, nil, nil, nil); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign grade level")
	}
	professor.AssignedGradeLevel = &grade
	professor.AssignedSection = nil
	professor.AssignedSubject = nil
	professor.AssignedRoom = nil
	return professor, nil
}

// DeleteProfessor removes the account together with its secondary
// assignments and subject enrollments.
func (s *AssignmentService) DeleteProfessor(ctx context.Context, professorID string) error {
	if _, err := s.loadProfessor(ctx, professorID); err != nil {
		return err
	}
	if err := s.roster.DeleteByProfessor(ctx, professorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear subject enrollments")
	}
	if err := s.assignments.DeleteByProfessor(ctx, professorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear assignments")
	}
	if err := s.professors.Delete(ctx, professorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete professor")
	}
	return nil
}

// AddSectionAssignment attaches a secondary section assignment after
// validating the staffing and schedule rules. Nothing persists on
// failure.
func (s *AssignmentService) AddSectionAssignment(ctx context.Context, professorID string, input models.SectionAssignmentInput) (*models.SectionAssignment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	professor, err := s.loadProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if lowerGrade(input.GradeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			"grades 1 to 3 have a single homeroom professor and take no section assignments")
	}

	if err := s.checkPlacement(ctx, professor, input.GradeLevel, input.Section, input.Subject); err != nil {
		return nil, err
	}

	slot, err := parseScheduleInput(input.DayOfWeek, input.StartTime, input.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if slot != nil {
		if err := s.checkScheduleConflicts(ctx, professor.ID, input.GradeLevel, input.Section, slot); err != nil {
			return nil, err
		}
	}

	assignment := &models.SectionAssignment{
		ProfessorID:  professor.ID,
		GradeLevel:   input.GradeLevel,
		Section:      input.Section,
		Subject:      input.Subject,
		AssignedRoom: rooms.ForSection(input.GradeLevel, input.Section),
		DayOfWeek:    input.DayOfWeek,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// RemoveSectionAssignment detaches a secondary assignment.
func (s *AssignmentService) RemoveSectionAssignment(ctx context.Context, professorID, assignmentID string) error {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.ProfessorID != professorID {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// ListAssignments returns the professor's combined assignments with the
// primary one synthesized first.
func (s *AssignmentService) ListAssignments(ctx context.Context, professorID string) ([]models.ProfessorAssignmentView, error) {
	professor, err := s.loadProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.assignments.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	views := make([]models.ProfessorAssignmentView, 0, len(secondary)+1)
	if professor.AssignedGradeLevel != nil && professor.AssignedSection != nil {
		room := ""
		if professor.AssignedRoom != nil {
			room = *professor.AssignedRoom
		} else {
			room = rooms.ForSection(*professor.AssignedGradeLevel, *professor.AssignedSection)
		}
		views = append(views, models.ProfessorAssignmentView{
			ID:         professor.ID,
			Primary:    true,
			GradeLevel: *professor.AssignedGradeLevel,
			Section:    *professor.AssignedSection,
			Subject:    professor.AssignedSubject,
			Room:       room,
		})
	}
	for _, a := range secondary {
		views = append(views, models.ProfessorAssignmentView{
			ID:         a.ID,
			GradeLevel: a.GradeLevel,
			Section:    a.Section,
			Subject:    a.Subject,
			Room:       a.AssignedRoom,
			DayOfWeek:  a.DayOfWeek,
			StartTime:  a.StartTime,
			EndTime:    a.EndTime,
		})
	}
	return views, nil
}

// TakenSections returns the sections of a grade that already hold a
// secondary assignment.
func (s *AssignmentService) TakenSections(ctx context.Context, gradeLevel string) ([]int, error) {
	if !validGradeLevel(gradeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level must be 1 to 6")
	}
	sections, err := s.assignments.TakenSections(ctx, gradeLevel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list taken sections")
	}
	return sections, nil
}

// StudentsOf returns the professor's approved student roster.
func (s *AssignmentService) StudentsOf(ctx context.Context, professorID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.loadProfessor(ctx, professorID); err != nil {
		return nil, err
	}
	students, err := s.roster.ListStudentsByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// OptionsForSection lists the professors eligible for approval choices
// in one grade and section.
func (s *AssignmentService) OptionsForSection(ctx context.Context, gradeLevel string, section int) (*ProfessorOptions, error) {
	if !validGradeLevel(gradeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade level must be 1 to 6")
	}
	options := &ProfessorOptions{GradeLevel: gradeLevel, Section: section}

	primaries, err := s.professors.ListProfessorsByPrimaryGrade(ctx, gradeLevel, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professors")
	}
	gradeRows, err := s.assignments.ListByGrade(ctx, gradeLevel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	if lowerGrade(gradeLevel) {
		for _, p := range primaries {
			options.Homeroom = append(options.Homeroom, models.UserInfo{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: p.Role})
		}
		return options, nil
	}

	options.PerSubject = make(map[string][]models.UserInfo, len(models.Subjects))
	seen := make(map[string]map[string]bool, len(models.Subjects))
	add := func(subject string, info models.UserInfo) {
		if seen[subject] == nil {
			seen[subject] = make(map[string]bool)
		}
		if seen[subject][info.ID] {
			return
		}
		seen[subject][info.ID] = true
		options.PerSubject[subject] = append(options.PerSubject[subject], info)
	}

	for _, p := range primaries {
		if p.AssignedSubject == nil || !models.ValidSubject(*p.AssignedSubject) {
			continue
		}
		add(*p.AssignedSubject, models.UserInfo{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: p.Role})
	}
	for _, row := range gradeRows {
		if row.Subject == nil || !models.ValidSubject(*row.Subject) {
			continue
		}
		professor, err := s.professors.FindByID(ctx, row.ProfessorID)
		if err != nil {
			continue
		}
		add(*row.Subject, models.UserInfo{ID: professor.ID, Email: professor.Email, FullName: professor.FullName, Role: professor.Role})
	}
	return options, nil
}

// ScheduleDescription returns a printable schedule for the professor's
// class in the given section, or "" when nothing is scheduled.
func (s *AssignmentService) ScheduleDescription(ctx context.Context, professorID, gradeLevel string, section int) string {
	own, err := s.assignments.ListByProfessor(ctx, professorID)
	if err != nil {
		s.logger.Warn("failed to load assignments for schedule", zap.String("professor_id", professorID), zap.Error(err))
		return ""
	}
	for _, row := range own {
		if row.GradeLevel != gradeLevel || row.Section != section {
			continue
		}
		if row.DayOfWeek != nil && row.StartTime != nil && row.EndTime != nil {
			return fmt.Sprintf("%s %s-%s", *row.DayOfWeek, *row.StartTime, *row.EndTime)
		}
	}
	return ""
}

// ValidateApprovalChoice checks that the professor may teach the grade
// and subject an admin picked during approval.
func (s *AssignmentService) ValidateApprovalChoice(ctx context.Context, professorID, gradeLevel, subject string) (*models.User, error) {
	professor, err := s.loadProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}

	teachesGrade := professor.AssignedGradeLevel != nil && *professor.AssignedGradeLevel == gradeLevel
	var secondary []models.SectionAssignment
	if !teachesGrade || !lowerGrade(gradeLevel) {
		secondary, err = s.assignments.ListByProfessor(ctx, professorID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
		}
		for _, a := range secondary {
			if a.GradeLevel == gradeLevel {
				teachesGrade = true
				break
			}
		}
	}
	if !teachesGrade {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%s is not assigned to grade %s", professor.FullName, gradeLevel))
	}

	if lowerGrade(gradeLevel) {
		return professor, nil
	}

	current, err := s.professorSubject(professor, secondary)
	if err != nil {
		return nil, err
	}
	if current == "" || current != subject {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("%s does not teach %s", professor.FullName, subject))
	}
	return professor, nil
}

func (s *AssignmentService) loadProfessor(ctx context.Context, id string) (*models.User, error) {
	professor, err := s.professors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if professor.Role != models.RoleProfessor {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
	}
	return professor, nil
}

// checkPlacement runs the grade-band staffing rules for placing a
// professor into (grade, section, subject).
func (s *AssignmentService) checkPlacement(ctx context.Context, professor *models.User, gradeLevel string, section int, subject *string) error {
	if lowerGrade(gradeLevel) {
		if subject != nil {
			return appErrors.Clone(appErrors.ErrValidation,
				"grades 1 to 3 professors teach all subjects, subject must be empty")
		}
		return s.checkLowerGradeExclusive(ctx, gradeLevel, professor.ID)
	}

	if subject == nil {
		return appErrors.Clone(appErrors.ErrValidation, "subject is required for grades 4 to 6")
	}
	if !models.ValidSubject(*subject) {
		return appErrors.Clone(appErrors.ErrValidation,
			"subject must be one of: Math, Science, English, Filipino, Social Studies, MAPEH")
	}

	own, err := s.assignments.ListByProfessor(ctx, professor.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	current, err := s.professorSubject(professor, own)
	if err != nil {
		return err
	}
	if current != "" && current != *subject {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("%s already teaches %s and may only teach one subject", professor.FullName, current))
	}

	primaries, err := s.professors.ListProfessorsByPrimaryGrade(ctx, gradeLevel, professor.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professors")
	}
	sectionRows, err := s.assignments.ListBySection(ctx, gradeLevel, section)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	// One professor per (grade, section, subject), across primary
	// fields and secondary rows.
	for _, other := range primaries {
		if other.AssignedSection != nil && *other.AssignedSection == section &&
			other.AssignedSubject != nil && *other.AssignedSubject == *subject {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("%s already teaches %s in grade %s section %d", other.FullName, *subject, gradeLevel, section))
		}
	}
	for _, row := range sectionRows {
		if row.ProfessorID != professor.ID && row.Subject != nil && *row.Subject == *subject {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("another professor already teaches %s in grade %s section %d", *subject, gradeLevel, section))
		}
	}

	// Section staffing cap.
	staff := make(map[string]bool)
	for _, other := range primaries {
		if other.AssignedSection != nil && *other.AssignedSection == section {
			staff[other.ID] = true
		}
	}
	for _, row := range sectionRows {
		if row.ProfessorID != professor.ID {
			staff[row.ProfessorID] = true
		}
	}
	if len(staff) >= maxProfessorsPerSection {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("grade %s section %d already has %d professors", gradeLevel, section, maxProfessorsPerSection))
	}
	return nil
}

// checkLowerGradeExclusive enforces the one-professor-per-grade rule for
// grades 1 to 3 across both assignment sources.
func (s *AssignmentService) checkLowerGradeExclusive(ctx context.Context, gradeLevel, professorID string) error {
	others, err := s.professors.ListProfessorsByPrimaryGrade(ctx, gradeLevel, professorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professors")
	}
	if len(others) > 0 {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("grade %s already has a professor (%s)", gradeLevel, others[0].FullName))
	}
	gradeRows, err := s.assignments.ListByGrade(ctx, gradeLevel)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	for _, row := range gradeRows {
		if row.ProfessorID != professorID {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("grade %s already has an assigned professor", gradeLevel))
		}
	}
	return nil
}

// checkScheduleConflicts rejects the slot when it collides with another
// professor in the same section or with the professor's own schedule.
func (s *AssignmentService) checkScheduleConflicts(ctx context.Context, professorID, gradeLevel string, section int, slot *models.ScheduleSlot) error {
	sectionRows, err := s.assignments.ListBySection(ctx, gradeLevel, section)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	if err := s.findOverlap(slot, sectionRows, professorID, "the section already has a class scheduled at that time"); err != nil {
		return err
	}

	own, err := s.assignments.ListByProfessor(ctx, professorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	return s.findOverlap(slot, own, "", "the professor already teaches another class at that time")
}

func (s *AssignmentService) findOverlap(slot *models.ScheduleSlot, existing []models.SectionAssignment, skipProfessorID, message string) error {
	for _, row := range existing {
		if skipProfessorID != "" && row.ProfessorID == skipProfessorID {
			continue
		}
		other, err := row.Slot()
		if err != nil {
			s.logger.Warn("skipping assignment with malformed schedule", zap.String("assignment_id", row.ID), zap.Error(err))
			continue
		}
		if slot.Overlaps(other) {
			if s.metrics != nil {
				s.metrics.ScheduleConflictRejected()
			}
			return appErrors.Clone(appErrors.ErrScheduleConflict, message)
		}
	}
	return nil
}

// professorSubject derives the single subject the professor teaches,
// looking at the primary assignment first and then the secondary rows.
func (s *AssignmentService) professorSubject(professor *models.User, secondary []models.SectionAssignment) (string, error) {
	if professor.AssignedSubject != nil && *professor.AssignedSubject != "" {
		return *professor.AssignedSubject, nil
	}
	for _, row := range secondary {
		if row.Subject != nil && *row.Subject != "" {
			return *row.Subject, nil
		}
	}
	return "", nil
}

// parseScheduleInput enforces the all-or-nothing schedule contract and
// parses the slot when present.
func parseScheduleInput(days, start, end *string) (*models.ScheduleSlot, error) {
	set := 0
	for _, v := range []*string{days, start, end} {
		if v != nil && *v != "" {
			set++
		}
	}
	if set == 0 {
		return nil, nil
	}
	if set != 3 {
		return nil, fmt.Errorf("day, start time and end time must be provided together")
	}
	return models.ParseScheduleSlot(*days, *start, *end)
}

func lowerGrade(gradeLevel string) bool {
	switch gradeLevel {
	case "1", "2", "3":
		return true
	}
	return false
}

func validGradeLevel(gradeLevel string) bool {
	switch gradeLevel {
	case "1", "2", "3", "4", "5", "6":
		return true
	}
	return false
}
