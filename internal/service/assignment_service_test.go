package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbes-dev/enrollment-api/internal/models"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type mockProfessors struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
	deleted []string
}

func newMockProfessors(users ...*models.User) *mockProfessors {
	m := &mockProfessors{byID: map[string]*models.User{}, byEmail: map[string]*models.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *mockProfessors) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfessors) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfessors) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "new-prof"
	}
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *mockProfessors) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.byID, id)
	return nil
}

func (m *mockProfessors) ListProfessors(ctx context.Context) ([]models.ProfessorSummary, error) {
	var out []models.ProfessorSummary
	for _, u := range m.byID {
		if u.Role == models.RoleProfessor {
			out = append(out, models.ProfessorSummary{User: *u})
		}
	}
	return out, nil
}

func (m *mockProfessors) ListProfessorsByPrimaryGrade(ctx context.Context, gradeLevel, excludeID string) ([]models.User, error) {
	var out []models.User
	for _, u := range m.byID {
		if u.Role != models.RoleProfessor || u.ID == excludeID {
			continue
		}
		if u.AssignedGradeLevel != nil && *u.AssignedGradeLevel == gradeLevel {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockProfessors) UpdatePrimaryAssignment(ctx context.Context, id string, gradeLevel *string, section *int, subject *string, room *string) error {
	u := m.byID[id]
	u.AssignedGradeLevel = gradeLevel
	u.AssignedSection = section
	u.AssignedSubject = subject
	u.AssignedRoom = room
	return nil
}

type mockAssignments struct {
	rows    map[string]*models.SectionAssignment
	deleted []string
}

func newMockAssignments(rows ...*models.SectionAssignment) *mockAssignments {
	m := &mockAssignments{rows: map[string]*models.SectionAssignment{}}
	for i, r := range rows {
		if r.ID == "" {
			r.ID = "a" + string(rune('1'+i))
		}
		m.rows[r.ID] = r
	}
	return m
}

func (m *mockAssignments) Create(ctx context.Context, assignment *models.SectionAssignment) error {
	if assignment.ID == "" {
		assignment.ID = "new-assignment"
	}
	m.rows[assignment.ID] = assignment
	return nil
}

func (m *mockAssignments) FindByID(ctx context.Context, id string) (*models.SectionAssignment, error) {
	if r, ok := m.rows[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignments) ListByProfessor(ctx context.Context, professorID string) ([]models.SectionAssignment, error) {
	var out []models.SectionAssignment
	for _, r := range m.rows {
		if r.ProfessorID == professorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAssignments) ListByGrade(ctx context.Context, gradeLevel string) ([]models.SectionAssignment, error) {
	var out []models.SectionAssignment
	for _, r := range m.rows {
		if r.GradeLevel == gradeLevel {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAssignments) ListBySection(ctx context.Context, gradeLevel string, section int) ([]models.SectionAssignment, error) {
	var out []models.SectionAssignment
	for _, r := range m.rows {
		if r.GradeLevel == gradeLevel && r.Section == section {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAssignments) Delete(ctx context.Context, id string) error {
	delete(m.rows, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAssignments) DeleteByProfessor(ctx context.Context, professorID string) error {
	for id, r := range m.rows {
		if r.ProfessorID == professorID {
			delete(m.rows, id)
		}
	}
	return nil
}

func (m *mockAssignments) TakenSections(ctx context.Context, gradeLevel string) ([]int, error) {
	seen := map[int]bool{}
	var out []int
	for _, r := range m.rows {
		if r.GradeLevel == gradeLevel && !seen[r.Section] {
			seen[r.Section] = true
			out = append(out, r.Section)
		}
	}
	return out, nil
}

type mockRoster struct {
	cleared  []string
	students map[string][]models.EnrollmentDetail
}

func (m *mockRoster) DeleteByProfessor(ctx context.Context, professorID string) error {
	m.cleared = append(m.cleared, professorID)
	return nil
}

func (m *mockRoster) ListStudentsByProfessor(ctx context.Context, professorID string) ([]models.EnrollmentDetail, error) {
	return m.students[professorID], nil
}

type mockConflictMetrics struct {
	conflicts int
}

func (m *mockConflictMetrics) ScheduleConflictRejected() { m.conflicts++ }

func professor(id, name string) *models.User {
	return &models.User{
		ID:       id,
		Email:    id + "@school.local",
		FullName: name,
		Role:     models.RoleProfessor,
		Active:   true,
	}
}

func newTestAssignmentService(profs *mockProfessors, assigns *mockAssignments, metrics *mockConflictMetrics) *AssignmentService {
	var observer conflictObserver
	if metrics != nil {
		observer = metrics
	}
	return NewAssignmentService(profs, assigns, &mockRoster{}, observer, nil, nil)
}

func requireConflict(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUpdatePrimaryAssignmentLowerGrade(t *testing.T) {
	p := professor("p1", "Maria Santos")
	profs := newMockProfessors(p)
	svc := newTestAssignmentService(profs, newMockAssignments(), nil)

	updated, err := svc.UpdatePrimaryAssignment(context.Background(), "p1", models.UpdateProfessorAssignmentRequest{
		GradeLevel: "2",
		Section:    1,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedRoom)
	assert.Equal(t, "Room 201 - Building B", *updated.AssignedRoom)
	assert.Equal(t, "2", *updated.AssignedGradeLevel)
}

func TestLowerGradeTakesOneProfessorAcrossBothSources(t *testing.T) {
	t.Run("blocked by another primary", func(t *testing.T) {
		incumbent := professor("p1", "Maria Santos")
		incumbent.AssignedGradeLevel = strPtr("1")
		incumbent.AssignedSection = intPtr(1)
		newcomer := professor("p2", "Jose Reyes")
		svc := newTestAssignmentService(newMockProfessors(incumbent, newcomer), newMockAssignments(), nil)

		_, err := svc.UpdatePrimaryAssignment(context.Background(), "p2", models.UpdateProfessorAssignmentRequest{
			GradeLevel: "1",
			Section:    2,
		})
		requireConflict(t, err)
		assert.Contains(t, err.Error(), "Maria Santos")
	})

	t.Run("blocked by another professor's grade rows", func(t *testing.T) {
		incumbent := professor("p1", "Maria Santos")
		newcomer := professor("p2", "Jose Reyes")
		assigns := newMockAssignments(&models.SectionAssignment{ID: "a1", ProfessorID: "p1", GradeLevel: "3", Section: 1})
		svc := newTestAssignmentService(newMockProfessors(incumbent, newcomer), assigns, nil)

		_, err := svc.AssignGradeLevel(context.Background(), "p2", "3")
		requireConflict(t, err)
	})

	t.Run("re-assigning the same professor is allowed", func(t *testing.T) {
		incumbent := professor("p1", "Maria Santos")
		incumbent.AssignedGradeLevel = strPtr("1")
		incumbent.AssignedSection = intPtr(1)
		svc := newTestAssignmentService(newMockProfessors(incumbent), newMockAssignments(), nil)

		_, err := svc.UpdatePrimaryAssignment(context.Background(), "p1", models.UpdateProfessorAssignmentRequest{
			GradeLevel: "1",
			Section:    2,
		})
		require.NoError(t, err)
	})
}

func TestLowerGradePlacementRejectsSubject(t *testing.T) {
	p := professor("p1", "Maria Santos")
	svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

	_, err := svc.UpdatePrimaryAssignment(context.Background(), "p1", models.UpdateProfessorAssignmentRequest{
		GradeLevel: "1",
		Section:    1,
		Subject:    strPtr("Math"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject must be empty")
}

func TestUpperGradeRequiresValidSubject(t *testing.T) {
	p := professor("p1", "Maria Santos")
	svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

	_, err := svc.UpdatePrimaryAssignment(context.Background(), "p1", models.UpdateProfessorAssignmentRequest{
		GradeLevel: "4",
		Section:    1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject is required")

	_, err = svc.UpdatePrimaryAssignment(context.Background(), "p1", models.UpdateProfessorAssignmentRequest{
		GradeLevel: "4",
		Section:    1,
		Subject:    strPtr("Recess"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject must be one of")
}

func TestProfessorTeachesOneSubjectSystemWide(t *testing.T) {
	p := professor("p1", "Maria Santos")
	p.AssignedGradeLevel = strPtr("4")
	p.AssignedSection = intPtr(1)
	p.AssignedSubject = strPtr("Math")
	svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

	// A second subject is refused even in a different grade and section.
	_, err := svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "5",
		Section:    2,
		Subject:    strPtr("Science"),
	})
	requireConflict(t, err)
	assert.Contains(t, err.Error(), "already teaches Math")

	// The same subject elsewhere is fine.
	_, err = svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "5",
		Section:    2,
		Subject:    strPtr("Math"),
	})
	require.NoError(t, err)
}

func TestOneProfessorPerSectionSubject(t *testing.T) {
	t.Run("taken by a primary assignment", func(t *testing.T) {
		incumbent := professor("p1", "Maria Santos")
		incumbent.AssignedGradeLevel = strPtr("4")
		incumbent.AssignedSection = intPtr(1)
		incumbent.AssignedSubject = strPtr("Math")
		newcomer := professor("p2", "Jose Reyes")
		svc := newTestAssignmentService(newMockProfessors(incumbent, newcomer), newMockAssignments(), nil)

		_, err := svc.AddSectionAssignment(context.Background(), "p2", models.SectionAssignmentInput{
			GradeLevel: "4",
			Section:    1,
			Subject:    strPtr("Math"),
		})
		requireConflict(t, err)
	})

	t.Run("taken by a secondary row", func(t *testing.T) {
		incumbent := professor("p1", "Maria Santos")
		newcomer := professor("p2", "Jose Reyes")
		assigns := newMockAssignments(&models.SectionAssignment{
			ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1, Subject: strPtr("Math"),
		})
		svc := newTestAssignmentService(newMockProfessors(incumbent, newcomer), assigns, nil)

		_, err := svc.AddSectionAssignment(context.Background(), "p2", models.SectionAssignmentInput{
			GradeLevel: "4",
			Section:    1,
			Subject:    strPtr("Math"),
		})
		requireConflict(t, err)
	})
}

func TestSectionStaffingCap(t *testing.T) {
	newcomer := professor("p7", "Jose Reyes")
	homeroom := professor("p6", "Homeroom Lead")
	homeroom.AssignedGradeLevel = strPtr("5")
	homeroom.AssignedSection = intPtr(3)
	profs := []*models.User{newcomer, homeroom}
	var rows []*models.SectionAssignment
	subjects := []string{"Math", "Science", "English", "Filipino", "Social Studies"}
	for i, subject := range subjects {
		id := "p" + string(rune('1'+i))
		profs = append(profs, professor(id, "Professor "+subject))
		rows = append(rows, &models.SectionAssignment{
			ID: "a" + string(rune('1'+i)), ProfessorID: id, GradeLevel: "5", Section: 3, Subject: strPtr(subject),
		})
	}
	svc := newTestAssignmentService(newMockProfessors(profs...), newMockAssignments(rows...), nil)

	// Five subject rows plus a sixth professor holding the section as
	// primary fill the section even though MAPEH is still free.
	_, err := svc.AddSectionAssignment(context.Background(), "p7", models.SectionAssignmentInput{
		GradeLevel: "5",
		Section:    3,
		Subject:    strPtr("MAPEH"),
	})
	requireConflict(t, err)
	assert.Contains(t, err.Error(), "6 professors")
}

func TestLowerGradesTakeNoSectionAssignments(t *testing.T) {
	p := professor("p1", "Maria Santos")
	svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

	_, err := svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "2",
		Section:    1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single homeroom professor")
}

func TestScheduleConflictAcrossSections(t *testing.T) {
	p := professor("p1", "Maria Santos")
	p.AssignedSubject = strPtr("Math")
	assigns := newMockAssignments(&models.SectionAssignment{
		ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1, Subject: strPtr("Math"),
		DayOfWeek: strPtr("Monday,Wednesday,Friday"), StartTime: strPtr("08:00"), EndTime: strPtr("09:00"),
	})
	metrics := &mockConflictMetrics{}
	svc := newTestAssignmentService(newMockProfessors(p), assigns, metrics)

	// Mon 08:30-09:00 in another section still collides with the
	// professor's own Mon/Wed/Fri 08:00-09:00 class.
	_, err := svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "5",
		Section:    2,
		Subject:    strPtr("Math"),
		DayOfWeek:  strPtr("Monday"),
		StartTime:  strPtr("08:30"),
		EndTime:    strPtr("09:00"),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)
	assert.Equal(t, 1, metrics.conflicts)
}

func TestScheduleConflictWithinSection(t *testing.T) {
	incumbent := professor("p1", "Maria Santos")
	newcomer := professor("p2", "Jose Reyes")
	assigns := newMockAssignments(&models.SectionAssignment{
		ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1, Subject: strPtr("Math"),
		DayOfWeek: strPtr("Tuesday"), StartTime: strPtr("10:00"), EndTime: strPtr("11:00"),
	})
	svc := newTestAssignmentService(newMockProfessors(incumbent, newcomer), assigns, nil)

	_, err := svc.AddSectionAssignment(context.Background(), "p2", models.SectionAssignmentInput{
		GradeLevel: "4",
		Section:    1,
		Subject:    strPtr("Science"),
		DayOfWeek:  strPtr("Tuesday"),
		StartTime:  strPtr("10:30"),
		EndTime:    strPtr("11:30"),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)
}

func TestBackToBackSchedulesDoNotConflict(t *testing.T) {
	p := professor("p1", "Maria Santos")
	p.AssignedSubject = strPtr("Math")
	assigns := newMockAssignments(&models.SectionAssignment{
		ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1, Subject: strPtr("Math"),
		DayOfWeek: strPtr("Monday"), StartTime: strPtr("08:00"), EndTime: strPtr("09:00"),
	})
	svc := newTestAssignmentService(newMockProfessors(p), assigns, nil)

	_, err := svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "4",
		Section:    2,
		Subject:    strPtr("Math"),
		DayOfWeek:  strPtr("Monday"),
		StartTime:  strPtr("09:00"),
		EndTime:    strPtr("10:00"),
	})
	require.NoError(t, err)
}

func TestUnscheduledAssignmentNeverConflicts(t *testing.T) {
	p := professor("p1", "Maria Santos")
	p.AssignedSubject = strPtr("Math")
	assigns := newMockAssignments(&models.SectionAssignment{
		ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1, Subject: strPtr("Math"),
		DayOfWeek: strPtr("Monday"), StartTime: strPtr("08:00"), EndTime: strPtr("09:00"),
	})
	svc := newTestAssignmentService(newMockProfessors(p), assigns, nil)

	_, err := svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "4",
		Section:    2,
		Subject:    strPtr("Math"),
	})
	require.NoError(t, err)
}

func TestPartialScheduleRejected(t *testing.T) {
	p := professor("p1", "Maria Santos")
	svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

	_, err := svc.AddSectionAssignment(context.Background(), "p1", models.SectionAssignmentInput{
		GradeLevel: "4",
		Section:    1,
		Subject:    strPtr("Math"),
		DayOfWeek:  strPtr("Monday"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provided together")
}

func TestRemoveSectionAssignmentChecksOwnership(t *testing.T) {
	assigns := newMockAssignments(&models.SectionAssignment{ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1})
	svc := newTestAssignmentService(newMockProfessors(professor("p1", "Maria Santos")), assigns, nil)

	err := svc.RemoveSectionAssignment(context.Background(), "p2", "a1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	require.NoError(t, svc.RemoveSectionAssignment(context.Background(), "p1", "a1"))
	assert.Equal(t, []string{"a1"}, assigns.deleted)
}

func TestListAssignmentsSynthesizesPrimaryFirst(t *testing.T) {
	p := professor("p1", "Maria Santos")
	p.AssignedGradeLevel = strPtr("4")
	p.AssignedSection = intPtr(1)
	p.AssignedSubject = strPtr("Math")
	p.AssignedRoom = strPtr("Room 401 - Building B")
	assigns := newMockAssignments(&models.SectionAssignment{
		ID: "a1", ProfessorID: "p1", GradeLevel: "5", Section: 2, Subject: strPtr("Math"), AssignedRoom: "Room 502 - Building A",
	})
	svc := newTestAssignmentService(newMockProfessors(p), assigns, nil)

	views, err := svc.ListAssignments(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].Primary)
	assert.Equal(t, "p1", views[0].ID)
	assert.Equal(t, "Room 401 - Building B", views[0].Room)
	assert.False(t, views[1].Primary)
}

func TestValidateApprovalChoice(t *testing.T) {
	t.Run("lower grade homeroom professor", func(t *testing.T) {
		p := professor("p1", "Maria Santos")
		p.AssignedGradeLevel = strPtr("2")
		svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

		chosen, err := svc.ValidateApprovalChoice(context.Background(), "p1", "2", "")
		require.NoError(t, err)
		assert.Equal(t, "p1", chosen.ID)
	})

	t.Run("professor not in the grade", func(t *testing.T) {
		p := professor("p1", "Maria Santos")
		p.AssignedGradeLevel = strPtr("2")
		svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

		_, err := svc.ValidateApprovalChoice(context.Background(), "p1", "3", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not assigned to grade 3")
	})

	t.Run("upper grade subject mismatch", func(t *testing.T) {
		p := professor("p1", "Maria Santos")
		p.AssignedGradeLevel = strPtr("4")
		p.AssignedSection = intPtr(1)
		p.AssignedSubject = strPtr("Math")
		svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

		_, err := svc.ValidateApprovalChoice(context.Background(), "p1", "4", "Science")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not teach Science")

		chosen, err := svc.ValidateApprovalChoice(context.Background(), "p1", "4", "Math")
		require.NoError(t, err)
		assert.Equal(t, "p1", chosen.ID)
	})

	t.Run("grade via secondary assignment", func(t *testing.T) {
		p := professor("p1", "Maria Santos")
		assigns := newMockAssignments(&models.SectionAssignment{
			ID: "a1", ProfessorID: "p1", GradeLevel: "5", Section: 1, Subject: strPtr("English"),
		})
		svc := newTestAssignmentService(newMockProfessors(p), assigns, nil)

		chosen, err := svc.ValidateApprovalChoice(context.Background(), "p1", "5", "English")
		require.NoError(t, err)
		assert.Equal(t, "p1", chosen.ID)
	})
}

func TestOptionsForSection(t *testing.T) {
	t.Run("lower grade lists homeroom candidates", func(t *testing.T) {
		p := professor("p1", "Maria Santos")
		p.AssignedGradeLevel = strPtr("1")
		svc := newTestAssignmentService(newMockProfessors(p), newMockAssignments(), nil)

		options, err := svc.OptionsForSection(context.Background(), "1", 1)
		require.NoError(t, err)
		require.Len(t, options.Homeroom, 1)
		assert.Equal(t, "p1", options.Homeroom[0].ID)
		assert.Empty(t, options.PerSubject)
	})

	t.Run("upper grade groups by subject without duplicates", func(t *testing.T) {
		p := professor("p1", "Maria Santos")
		p.AssignedGradeLevel = strPtr("4")
		p.AssignedSection = intPtr(1)
		p.AssignedSubject = strPtr("Math")
		assigns := newMockAssignments(&models.SectionAssignment{
			ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 2, Subject: strPtr("Math"),
		})
		svc := newTestAssignmentService(newMockProfessors(p), assigns, nil)

		options, err := svc.OptionsForSection(context.Background(), "4", 2)
		require.NoError(t, err)
		require.Len(t, options.PerSubject["Math"], 1)
		assert.Equal(t, "p1", options.PerSubject["Math"][0].ID)
	})
}

func TestCreateProfessor(t *testing.T) {
	profs := newMockProfessors()
	svc := newTestAssignmentService(profs, newMockAssignments(), nil)

	info, err := svc.CreateProfessor(context.Background(), models.CreateProfessorRequest{
		Email:    "maria@school.local",
		FullName: "Maria Santos",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleProfessor, info.Role)

	created := profs.byEmail["maria@school.local"]
	require.NotNil(t, created)
	assert.True(t, created.EmailVerified)
	assert.True(t, created.Active)
	assert.Len(t, created.PasswordHistory, 1)
}

func TestDeleteProfessorCascades(t *testing.T) {
	p := professor("p1", "Maria Santos")
	profs := newMockProfessors(p)
	assigns := newMockAssignments(&models.SectionAssignment{ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1})
	roster := &mockRoster{}
	svc := NewAssignmentService(profs, assigns, roster, nil, nil, nil)

	require.NoError(t, svc.DeleteProfessor(context.Background(), "p1"))
	assert.Equal(t, []string{"p1"}, roster.cleared)
	assert.Empty(t, assigns.rows)
	assert.Equal(t, []string{"p1"}, profs.deleted)
}

func TestLoadProfessorRejectsOtherRoles(t *testing.T) {
	student := &models.User{ID: "s1", Email: "s1@x.test", Role: models.RoleStudent}
	svc := newTestAssignmentService(newMockProfessors(student), newMockAssignments(), nil)

	_, err := svc.GetProfessor(context.Background(), "s1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleDescription(t *testing.T) {
	assigns := newMockAssignments(&models.SectionAssignment{
		ID: "a1", ProfessorID: "p1", GradeLevel: "4", Section: 1, Subject: strPtr("Math"),
		DayOfWeek: strPtr("Monday,Wednesday"), StartTime: strPtr("08:00"), EndTime: strPtr("09:00"),
	})
	svc := newTestAssignmentService(newMockProfessors(professor("p1", "Maria Santos")), assigns, nil)

	assert.Equal(t, "Monday,Wednesday 08:00-09:00", svc.ScheduleDescription(context.Background(), "p1", "4", 1))
	assert.Equal(t, "", svc.ScheduleDescription(context.Background(), "p1", "4", 2))
}
