package api

import (
	"github.com/labstack/echo/v4"

	"attendance-backend/internal/auth"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, authSvc *auth.Service) {
	// Initialize services
	InitServices(authSvc)

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (public - no auth required for login)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", registerHandler)
	authGroup.POST("/login", loginHandler, auth.LoginRateLimiter.Middleware())
	authGroup.POST("/logout", logoutHandler)
	authGroup.POST("/refresh", refreshTokenHandler)
	authGroup.GET("/me", getCurrentUser)
	authGroup.GET("/sso/login", ssoLoginHandler)
	authGroup.GET("/sso/callback", ssoCallbackHandler)

	// Class routes (authenticated)
	classes := api.Group("/classes")
	classes.Use(auth.RequireAuth(authSvc))
	classes.GET("", listClassesHandler)
	classes.GET("/lecturer/:id", listLecturerClassesHandler)
	classes.POST("", createClassHandler, auth.RequireLecturer())
	classes.PUT("/:id", updateClassHandler, auth.RequireLecturer())

	// Attendance routes
	att := api.Group("/attendance")
	att.Use(auth.RequireAuth(authSvc))

	// Code lifecycle: lecturers open/refresh the window, students submit
	att.POST("/generate-code", generateCodeHandler, auth.RequireLecturer())
	att.POST("/validate-code", validateCodeHandler, auth.SubmitRateLimiter.Middleware())
	att.POST("/bulk-mark", bulkMarkHandler, auth.RequireLecturer())

	// Reporting (reads the ledger only)
	att.GET("/student/:id", studentStatsHandler)
	att.GET("/today/:id", todayAttendanceHandler)
	att.GET("/stats/course/:courseId", courseStatsHandler)
	att.GET("/students/:courseCode", courseRosterHandler, auth.RequireLecturer())

	// Live code feed WebSocket (authentication handled inside handler
	// since browsers cannot set headers on WebSocket upgrades)
	api.GET("/attendance/code/ws", codeFeedHandler)

	// Audit log routes (lecturers only)
	audit := api.Group("/audit")
	audit.Use(auth.RequireAuth(authSvc))
	audit.Use(auth.RequireLecturer())
	audit.GET("", listAuditLogsHandler)
}
