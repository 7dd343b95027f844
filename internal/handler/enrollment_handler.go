package handler

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fbes-dev/enrollment-api/internal/models"
	"github.com/fbes-dev/enrollment-api/internal/service"
	appErrors "github.com/fbes-dev/enrollment-api/pkg/errors"
	"github.com/fbes-dev/enrollment-api/pkg/response"
	"github.com/fbes-dev/enrollment-api/pkg/storage"
)

// EnrollmentHandler exposes the enrollment application endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	exports     *service.ExportService
	dashboard   *service.DashboardService
	documents   *storage.DocumentStore
	signer      *storage.SignedURLSigner
	downloadURL string
}

// NewEnrollmentHandler constructs EnrollmentHandler. downloadURL is the
// route where signed document tokens are redeemed.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, exports *service.ExportService, dashboard *service.DashboardService, documents *storage.DocumentStore, signer *storage.SignedURLSigner, downloadURL string) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		exports:     exports,
		dashboard:   dashboard,
		documents:   documents,
		signer:      signer,
		downloadURL: downloadURL,
	}
}

// List godoc
// @Summary List enrollment applications
// @Tags Enrollments
// @Produce json
// @Param status query string false "Filter by status"
// @Param grade query string false "Filter by grade level"
// @Param section query int false "Filter by section"
// @Param search query string false "Search student name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter
	filter.Status = models.EnrollmentStatus(strings.ToUpper(c.Query("status")))
	filter.GradeLevel = c.Query("grade")
	if raw := c.Query("section"); raw != "" {
		if section, err := strconv.Atoi(raw); err == nil {
			filter.Section = &section
		}
	}
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get an enrollment application
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, subjects, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canView(c, enrollment) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrollment": enrollment, "subjects": subjects}, nil)
}

// Submit godoc
// @Summary Submit an enrollment application
// @Description Multipart form with student details plus birth_certificate and form137 PDFs
// @Tags Enrollments
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input models.EnrollmentInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment form"))
		return
	}

	birthCert, closeBirth, err := formUpload(c, "birth_certificate")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeBirth()

	form137, closeForm, err := formUpload(c, "form137")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeForm()

	enrollment, err := h.enrollments.Submit(c.Request.Context(), claims.UserID, input, *birthCert, *form137)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, enrollment)
}

// Edit godoc
// @Summary Edit a pending enrollment application
// @Tags Enrollments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Edit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input models.EnrollmentInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment form"))
		return
	}

	birthCert, closeBirth, err := optionalFormUpload(c, "birth_certificate")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeBirth()

	form137, closeForm, err := optionalFormUpload(c, "form137")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeForm()

	enrollment, err := h.enrollments.Edit(c.Request.Context(), c.Param("id"), claims.UserID, input, birthCert, form137)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Reset godoc
// @Summary Withdraw a pending enrollment application
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.enrollments.Reset(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// My godoc
// @Summary Get the current student's enrollment
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/me [get]
func (h *EnrollmentHandler) My(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, subjects, err := h.enrollments.MyEnrollment(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrollment": enrollment, "subjects": subjects}, nil)
}

// SummaryPDF godoc
// @Summary Download the current student's enrollment summary as PDF
// @Tags Enrollments
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /enrollments/me/summary.pdf [get]
func (h *EnrollmentHandler) SummaryPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	data, filename, err := h.exports.EnrollmentSummaryPDF(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, filename, "application/pdf", data)
}

// Approve godoc
// @Summary Approve an enrollment application
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body models.ApproveEnrollmentRequest true "Professor choices"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/{id}/approve [post]
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	var req models.ApproveEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}

	enrollment, err := h.enrollments.Approve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Reject godoc
// @Summary Reject an enrollment application
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body models.RejectEnrollmentRequest true "Optional reason"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/reject [post]
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	var req models.RejectEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}

	enrollment, err := h.enrollments.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Reassign godoc
// @Summary Move an approved student to another section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body models.ReassignEnrollmentRequest true "Target section"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/{id}/reassign [post]
func (h *EnrollmentHandler) Reassign(c *gin.Context) {
	var req models.ReassignEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reassign payload"))
		return
	}

	enrollment, err := h.enrollments.Reassign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Remove godoc
// @Summary Remove a student record entirely
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204 {object} response.Envelope
// @Router /enrollments/{id}/record [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	if err := h.enrollments.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context())
	response.NoContent(c)
}

// ProfessorOptions godoc
// @Summary List eligible professors for approving an application
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/professor-options [get]
func (h *EnrollmentHandler) ProfessorOptions(c *gin.Context) {
	options, err := h.enrollments.ProfessorOptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Document godoc
// @Summary Issue a short-lived download link for an uploaded document
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param kind path string true "Document kind" Enums(birth_certificate, form137)
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/documents/{kind} [get]
func (h *EnrollmentHandler) Document(c *gin.Context) {
	enrollment, relPath, err := h.enrollments.DocumentPath(c.Request.Context(), c.Param("id"), c.Param("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canView(c, enrollment) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	token, expiresAt, err := h.signer.Generate(enrollment.ID, relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"url":        h.downloadURL + "?token=" + url.QueryEscape(token),
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Redeem a signed document link
// @Tags Enrollments
// @Produce application/pdf
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /documents/download [get]
func (h *EnrollmentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing download token"))
		return
	}

	_, relPath, _, err := h.signer.Parse(token)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token"))
		return
	}

	file, err := h.documents.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "document not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document"))
		return
	}

	c.Header("Content-Disposition", `inline; filename="document.pdf"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}

func (h *EnrollmentHandler) canView(c *gin.Context, enrollment *models.Enrollment) bool {
	claims := claimsFromContext(c)
	if claims == nil {
		return false
	}
	if claims.Role == models.RoleAdmin {
		return true
	}
	return enrollment.UserID == claims.UserID
}

func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, field+" file is required")
	}
	return openUpload(header, field)
}

func optionalFormUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	return openUpload(header, field)
}

func openUpload(header *multipart.FileHeader, field string) (*service.Upload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read "+field+" file")
	}
	upload := &service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}
	return upload, func() { file.Close() }, nil
}
