package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

var (
	authService       *auth.Service
	attendanceService *attendance.Service
	userRepo          *database.UserRepo
	classRepo         *database.ClassRepo
	auditRepo         *database.AuditRepo
)

// InitServices wires the handler-level services (call after the
// database is ready)
func InitServices(authSvc *auth.Service) {
	authService = authSvc
	attendanceService = attendance.NewService()
	userRepo = database.NewUserRepo()
	classRepo = database.NewClassRepo()
	auditRepo = database.NewAuditRepo()
}

// Health check
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getUserFromContext returns the authenticated user stored by RequireAuth
func getUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(auth.ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// listAuditLogsHandler handles GET /api/audit
func listAuditLogsHandler(c echo.Context) error {
	filter := models.AuditFilter{
		UserID:       c.QueryParam("user_id"),
		Action:       c.QueryParam("action"),
		ActionPrefix: c.QueryParam("action_prefix"),
		Limit:        50,
	}

	logs, total, err := auditRepo.List(filter)
	if err != nil {
		c.Logger().Error("list audit logs error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list audit logs",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}
