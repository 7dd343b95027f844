package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fbes-dev/enrollment-api/internal/models"
	"github.com/fbes-dev/enrollment-api/internal/service"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
	"github.com/fbes-dev/enrollment-api/pkg/response"
)

// ProfessorHandler exposes professor account and assignment endpoints.
type ProfessorHandler struct {
	assignments *service.AssignmentService
}

// NewProfessorHandler constructs ProfessorHandler.
func NewProfessorHandler(assignments *service.AssignmentService) *ProfessorHandler {
	return &ProfessorHandler{assignments: assignments}
}

// List godoc
// @Summary List professors
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professors [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	professors, err := h.assignments.ListProfessors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// Create godoc
// @Summary Create a professor account
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body models.CreateProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /professors [post]
func (h *ProfessorHandler) Create(c *gin.Context) {
	var req models.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}

	professor, err := h.assignments.CreateProfessor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Get godoc
// @Summary Get a professor
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/{id} [get]
func (h *ProfessorHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !adminOrSelf(c, id) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	professor, err := h.assignments.GetProfessor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Update godoc
// @Summary Update a professor's primary assignment
// @Tags Professors
// @Accept json
// @Produce json
// @Param id path string true "Professor ID"
// @Param payload body models.UpdateProfessorAssignmentRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /professors/{id} [put]
func (h *ProfessorHandler) Update(c *gin.Context) {
	var req models.UpdateProfessorAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	professor, err := h.assignments.UpdatePrimaryAssignment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Delete godoc
// @Summary Delete a professor and their assignments
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/{id} [delete]
func (h *ProfessorHandler) Delete(c *gin.Context) {
	if err := h.assignments.DeleteProfessor(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignGradeLevel godoc
// @Summary Set a professor's grade level
// @Tags Professors
// @Accept json
// @Produce json
// @Param id path string true "Professor ID"
// @Param payload body map[string]string true "Grade level"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /professors/{id}/grade-level [put]
func (h *ProfessorHandler) AssignGradeLevel(c *gin.Context) {
	var payload struct {
		GradeLevel string `json:"grade_level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "grade_level required"))
		return
	}

	professor, err := h.assignments.AssignGradeLevel(c.Request.Context(), c.Param("id"), payload.GradeLevel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// ListAssignments godoc
// @Summary List a professor's section assignments
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/assignments [get]
func (h *ProfessorHandler) ListAssignments(c *gin.Context) {
	id := c.Param("id")
	if !adminOrSelf(c, id) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	assignments, err := h.assignments.ListAssignments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// AddAssignment godoc
// @Summary Add a section assignment to a professor
// @Tags Professors
// @Accept json
// @Produce json
// @Param id path string true "Professor ID"
// @Param payload body models.SectionAssignmentInput true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /professors/{id}/assignments [post]
func (h *ProfessorHandler) AddAssignment(c *gin.Context) {
	var input models.SectionAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.AddSectionAssignment(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// RemoveAssignment godoc
// @Summary Remove a section assignment from a professor
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Param aid path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professors/{id}/assignments/{aid} [delete]
func (h *ProfessorHandler) RemoveAssignment(c *gin.Context) {
	if err := h.assignments.RemoveSectionAssignment(c.Request.Context(), c.Param("id"), c.Param("aid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Students godoc
// @Summary List approved students taught by a professor
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/students [get]
func (h *ProfessorHandler) Students(c *gin.Context) {
	id := c.Param("id")
	if !adminOrSelf(c, id) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	students, err := h.assignments.StudentsOf(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

func adminOrSelf(c *gin.Context, id string) bool {
	claims := claimsFromContext(c)
	if claims == nil {
		return false
	}
	if claims.Role == models.RoleAdmin {
		return true
	}
	return claims.UserID == id
}
