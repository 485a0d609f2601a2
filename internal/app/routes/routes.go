package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/controllers"
	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/middleware"
	"github.com/eston/admissions/internal/pkg/ratelimit"
	"github.com/eston/admissions/internal/pkg/websocket"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health      *controllers.HealthController
	Auth        *controllers.AuthController
	Application *controllers.ApplicationController
	Course      *controllers.CourseController
	User        *controllers.UserController
	Dashboard   *controllers.DashboardController
	Events      *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *ratelimit.KeyedLimiter,
) {
	api := router.Group("/api")

	api.GET("/health", h.Health.Check)

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login",
			middleware.RateLimit(loginLimiter, "Too many login attempts, please try again later"),
			h.Auth.Login)
		auth.PUT("/forgotpassword", h.Auth.ForgotPassword)
	}

	authRequired := authMiddleware.JWTAuth()
	adminRequired := authMiddleware.RoleRequired(models.RoleAdmin)

	authProtected := api.Group("/auth", authRequired)
	{
		authProtected.GET("/me", h.Auth.GetProfile)
		authProtected.PUT("/profile", h.Auth.UpdateProfile)
	}

	// --- Public course catalog ---
	courses := api.Group("/courses")
	{
		courses.GET("", h.Course.ListPublic)
		courses.GET("/:id", h.Course.GetPublic)
	}

	// --- Applications ---
	applications := api.Group("/applications")
	{
		applications.POST("", h.Application.Submit)

		adminApplications := applications.Group("", authRequired, adminRequired)
		{
			adminApplications.GET("", h.Application.List)
			adminApplications.GET("/export", h.Application.Export)
			adminApplications.PUT("/:id/status", h.Application.UpdateStatus)
		}

		// Ownership is checked per application by the service
		ownerApplications := applications.Group("", authRequired)
		{
			ownerApplications.GET("/my-applications", h.Application.MyApplications)
			ownerApplications.GET("/:id", h.Application.Get)
			ownerApplications.PUT("/:id/documents", h.Application.UpdateDocuments)
			ownerApplications.DELETE("/:id", h.Application.Delete)
		}
	}

	// --- Admin routes ---
	admin := api.Group("/admin", authRequired, adminRequired)
	{
		admin.GET("/dashboard", h.Dashboard.Summary)
		admin.GET("/applications", h.Application.AdminList)
		admin.GET("/events", h.Events.HandleConnection)

		adminCourses := admin.Group("/courses")
		{
			adminCourses.GET("", h.Course.List)
			adminCourses.POST("", h.Course.Create)
			adminCourses.PUT("/:id", h.Course.Update)
			adminCourses.DELETE("/:id", h.Course.Delete)
			adminCourses.PUT("/:id/toggle-status", h.Course.ToggleStatus)
		}

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", h.User.List)
			adminUsers.POST("", h.User.Create)
			adminUsers.PUT("/:id", h.User.UpdateRole)
			adminUsers.DELETE("/:id", h.User.Delete)
			adminUsers.PUT("/:id/toggle-status", h.User.ToggleStatus)
		}
	}
}
