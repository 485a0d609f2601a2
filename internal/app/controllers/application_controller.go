package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/services"
	"github.com/eston/admissions/internal/middleware"
	"github.com/eston/admissions/internal/pkg/helpers"
)

// ApplicationController handles application submission and review
type ApplicationController struct {
	applicationService services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
	}
}

// Submit handles the public application form
// @Summary Submit an application
// @Description Creates a pending application and sends confirmation and staff notifications
// @Tags applications
// @Accept json
// @Produce json
// @Param request body dto.SubmitApplicationRequest true "Application form"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitApplicationResponse} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or duplicate email"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	app, err := c.applicationService.Submit(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.SubmitApplicationResponse{
		Message:       "Application submitted successfully!",
		ApplicationID: app.ID,
	}))
}

// parseFilter reads the search and status query parameters shared by the listing endpoints
func parseFilter(ctx *gin.Context) (dto.ApplicationFilter, error) {
	status, err := services.ParseStatusFilter(ctx.Query("status"))
	if err != nil {
		return dto.ApplicationFilter{}, err
	}
	return dto.ApplicationFilter{
		Search: strings.TrimSpace(ctx.Query("search")),
		Status: status,
	}, nil
}

// List returns every application matching the filter
// @Summary List applications
// @Description Lists applications newest first. Search matches names, email and course.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "pending, approved, rejected or all"
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 400 {object} dto.ErrorResponse "Invalid status filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	filter, err := parseFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	apps, _, err := c.applicationService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(apps))
}

// AdminList returns one page of applications
// @Summary List applications (paginated)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "pending, approved, rejected or all"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 400 {object} dto.ErrorResponse "Invalid status filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/applications [get]
func (c *ApplicationController) AdminList(ctx *gin.Context) {
	filter, err := parseFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(page, size)

	apps, total, err := c.applicationService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(apps, helpers.NewPaginationInfo(total, page, size)))
}

// Export streams the filtered applications as CSV
// @Summary Export applications
// @Tags applications
// @Produce text/csv
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "pending, approved, rejected or all"
// @Success 200 {file} file "CSV export"
// @Failure 400 {object} dto.ErrorResponse "Invalid status filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /applications/export [get]
func (c *ApplicationController) Export(ctx *gin.Context) {
	filter, err := parseFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	apps, _, err := c.applicationService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteApplicationsCSV(&buf, apps); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("applications-%s.csv", time.Now().Format("20060102-150405"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// MyApplications returns the applications submitted under the caller's email
// @Summary My applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Application} "Applications"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /applications/my-applications [get]
func (c *ApplicationController) MyApplications(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.AbortUnauthorized(ctx, "User information not found")
		return
	}

	apps, err := c.applicationService.ListMine(ctx.Request.Context(), user)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(apps))
}

// Get returns one application to its owner or an admin
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.AbortUnauthorized(ctx, "User information not found")
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	app, err := c.applicationService.Get(ctx.Request.Context(), user, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app))
}

// UpdateStatus records a review decision
// @Summary Update application status
// @Description Moves a pending application to approved or rejected. Decided applications cannot change.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateStatusRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Updated application"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Already decided or modified concurrently"
// @Router /applications/{id}/status [put]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app))
}

// UpdateDocuments sets the documents-submitted flag
// @Summary Update documents flag
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateDocumentsRequest true "Documents flag"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Updated application"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Not the owner or application already decided"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/documents [put]
func (c *ApplicationController) UpdateDocuments(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.AbortUnauthorized(ctx, "User information not found")
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateDocumentsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	app, err := c.applicationService.SetDocuments(ctx.Request.Context(), user, id, *req.DocumentsSubmitted)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(app))
}

// Delete withdraws or removes an application
// @Summary Delete application
// @Description Owners may withdraw a pending application; admins may delete any application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Application deleted"
// @Failure 403 {object} dto.ErrorResponse "Not permitted"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [delete]
func (c *ApplicationController) Delete(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.AbortUnauthorized(ctx, "User information not found")
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.applicationService.Delete(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Application deleted successfully"))
}

