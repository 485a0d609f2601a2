package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/services"
	"github.com/eston/admissions/internal/middleware"
	"github.com/eston/admissions/internal/pkg/helpers"
)

// CourseController handles the course catalog
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

func courseFilter(ctx *gin.Context) (dto.CourseFilter, int, int) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return dto.CourseFilter{
		Search: strings.TrimSpace(ctx.Query("search")),
		Limit:  limit,
		Offset: offset,
	}, page, size
}

// ListPublic lists active courses
// @Summary List courses
// @Description Lists active courses with pagination
// @Tags courses
// @Produce json
// @Param search query string false "Search name, code or description"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) ListPublic(ctx *gin.Context) {
	filter, page, size := courseFilter(ctx)

	courses, total, err := c.courseService.ListPublic(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(courses, helpers.NewPaginationInfo(total, page, size)))
}

// GetPublic returns an active course with its application statistics
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseDetailResponse} "Course"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetPublic(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.GetPublic(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// List lists every course including inactive ones
// @Summary List courses (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search name, code or description"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	filter, page, size := courseFilter(ctx)

	courses, total, err := c.courseService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(courses, helpers.NewPaginationInfo(total, page, size)))
}

// Create adds a course to the catalog
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or duplicate code"
// @Router /admin/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	course, err := c.courseService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course))
}

// Update patches a course
// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or duplicate code"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /admin/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// Delete removes a course without applications
// @Summary Delete course
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Course deleted"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course has applications"
// @Router /admin/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.courseService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Course deleted successfully"))
}

// ToggleStatus flips is_active
// @Summary Toggle course status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /admin/courses/{id}/toggle-status [put]
func (c *CourseController) ToggleStatus(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	course, err := c.courseService.ToggleStatus(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}
