package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/services"
	"github.com/eston/admissions/internal/middleware"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/helpers"
)

// UserController handles account administration
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// List returns a page of users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search email or name"
// @Param role query string false "student or admin"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]models.User} "Users"
// @Failure 400 {object} dto.ErrorResponse "Invalid role"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	role := strings.TrimSpace(ctx.Query("role"))
	if role != "" {
		if _, ok := models.ParseRoleType(role); !ok {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("role", "role must be student or admin"))
			return
		}
	}

	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	users, total, err := c.userService.List(ctx.Request.Context(), dto.UserFilter{
		Search: strings.TrimSpace(ctx.Query("search")),
		Role:   role,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(users, helpers.NewPaginationInfo(total, page, size)))
}

// Create adds an account with an explicit role
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.APIResponse{data=models.User} "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or user already exists"
// @Router /admin/users [post]
func (c *UserController) Create(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(user))
}

// UpdateRole reassigns a user's role
// @Summary Update user role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRoleRequest true "Role"
// @Success 200 {object} dto.APIResponse{data=models.User} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid role"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateUserRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	user, err := c.userService.UpdateRole(ctx.Request.Context(), id, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user))
}

// Delete removes an account
// @Summary Delete user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "User deleted"
// @Failure 400 {object} dto.ErrorResponse "Cannot delete own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.AbortUnauthorized(ctx, "User information not found")
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), actor.ID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("User deleted successfully"))
}

// ToggleStatus enables or disables an account
// @Summary Toggle user status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Cannot disable own account"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /admin/users/{id}/toggle-status [put]
func (c *UserController) ToggleStatus(ctx *gin.Context) {
	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.AbortUnauthorized(ctx, "User information not found")
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	user, err := c.userService.ToggleStatus(ctx.Request.Context(), actor.ID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(user))
}
