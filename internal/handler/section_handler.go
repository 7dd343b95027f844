package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fbes-dev/enrollment-api/internal/rooms"
	"github.com/fbes-dev/enrollment-api/internal/service"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
	"github.com/fbes-dev/enrollment-api/pkg/response"
)

// SectionHandler exposes section occupancy and roster endpoints.
type SectionHandler struct {
	enrollments *service.EnrollmentService
	assignments *service.AssignmentService
	exports     *service.ExportService
}

// NewSectionHandler constructs SectionHandler.
func NewSectionHandler(enrollments *service.EnrollmentService, assignments *service.AssignmentService, exports *service.ExportService) *SectionHandler {
	return &SectionHandler{enrollments: enrollments, assignments: assignments, exports: exports}
}

// Overview godoc
// @Summary List populated sections with occupancy and rooms
// @Tags Sections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *SectionHandler) Overview(c *gin.Context) {
	overview, err := h.enrollments.SectionsOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Students godoc
// @Summary List approved students of a section
// @Tags Sections
// @Produce json
// @Param grade path string true "Grade level"
// @Param section path int true "Section number"
// @Success 200 {object} response.Envelope
// @Router /sections/{grade}/{section}/students [get]
func (h *SectionHandler) Students(c *gin.Context) {
	section, err := strconv.Atoi(c.Param("section"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section must be a number"))
		return
	}

	students, err := h.enrollments.SectionRoster(c.Request.Context(), c.Param("grade"), section)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// RosterCSV godoc
// @Summary Download a section roster as CSV
// @Tags Sections
// @Produce text/csv
// @Param grade path string true "Grade level"
// @Param section path int true "Section number"
// @Success 200 {file} binary
// @Router /sections/{grade}/{section}/roster.csv [get]
func (h *SectionHandler) RosterCSV(c *gin.Context) {
	section, err := strconv.Atoi(c.Param("section"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section must be a number"))
		return
	}

	data, filename, err := h.exports.SectionRosterCSV(c.Request.Context(), c.Param("grade"), section)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, filename, "text/csv", data)
}

// Taken godoc
// @Summary List sections already staffed for a grade
// @Tags Sections
// @Produce json
// @Param grade query string true "Grade level"
// @Success 200 {object} response.Envelope
// @Router /sections/taken [get]
func (h *SectionHandler) Taken(c *gin.Context) {
	grade := c.Query("grade")
	if grade == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade query parameter required"))
		return
	}

	taken, err := h.assignments.TakenSections(c.Request.Context(), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, taken, nil)
}

// Rooms godoc
// @Summary List the rooms assigned to a grade level
// @Tags Sections
// @Produce json
// @Param grade path string true "Grade level"
// @Success 200 {object} response.Envelope
// @Router /rooms/{grade} [get]
func (h *SectionHandler) Rooms(c *gin.Context) {
	grade := c.Param("grade")
	byPlan := rooms.ForGrade(grade)
	if len(byPlan) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown grade level"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"grade_level": grade,
		"building":    rooms.BuildingForGrade(grade),
		"rooms":       byPlan,
	}, nil)
}
