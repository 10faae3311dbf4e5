package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/auth"
	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

// generateCodeHandler handles POST /api/attendance/generate-code.
// Called repeatedly by the lecturer display on its refresh timer; a
// live session is reused, so polling never rotates the secret.
func generateCodeHandler(c echo.Context) error {
	var req models.GenerateCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.ClassID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "class ID required",
		})
	}

	user := getUserFromContext(c)

	grant, err := attendanceService.RequestCode(req.ClassID, user.ID, c.RealIP())
	if err != nil {
		if errors.Is(err, attendance.ErrNotClassLecturer) {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "you are not the lecturer for this class",
			})
		}
		c.Logger().Error("generate code error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error generating code",
		})
	}

	if grant.Opened {
		auditRepo.Log(user.ID, user.FullName, models.ActionSessionOpen, req.ClassID, nil, c.RealIP())
	}

	return c.JSON(http.StatusOK, models.GenerateCodeResponse{
		Code:     grant.Code,
		TimeLeft: grant.ExpiresInMs,
	})
}

// validateCodeHandler handles POST /api/attendance/validate-code.
// Re-submitting a valid code the same day is success, not an error;
// only a first mark is audited.
func validateCodeHandler(c echo.Context) error {
	var req models.ValidateCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	// Students mark themselves; the session identity wins over the
	// request body.
	user := getUserFromContext(c)
	studentID := req.StudentID
	if user.Role == models.RoleStudent {
		studentID = user.ID
	}
	if req.ClassID == "" || studentID == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "classId, studentId and code are required",
		})
	}

	result, err := attendanceService.SubmitCode(req.ClassID, studentID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNoActiveSession):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"accepted": false,
				"reason":   "no active attendance session for this class",
			})
		case errors.Is(err, attendance.ErrInvalidCode):
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"accepted": false,
				"reason":   "invalid or expired code",
			})
		default:
			c.Logger().Error("validate code error: ", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "error validating code",
			})
		}
	}

	ipAddress := c.RealIP()
	auth.SubmitRateLimiter.RecordSuccess(ipAddress)

	message := "attendance already marked"
	if result.Created {
		message = "attendance marked successfully"
		auditRepo.Log(studentID, user.FullName, models.ActionMark, req.ClassID,
			map[string]string{"date": result.Date}, ipAddress)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"accepted": true,
		"message":  message,
	})
}

// bulkMarkHandler handles POST /api/attendance/bulk-mark
func bulkMarkHandler(c echo.Context) error {
	var req models.BulkMarkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.ClassID == "" || req.Students == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "classId and students are required",
		})
	}

	user := getUserFromContext(c)

	created, err := attendanceService.BulkMark(req.ClassID, req.Students, req.Date)
	if err != nil {
		c.Logger().Error("bulk mark error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error saving bulk attendance",
		})
	}

	auditRepo.Log(user.ID, user.FullName, models.ActionBulkMark, req.ClassID,
		map[string]interface{}{"students": len(req.Students), "created": created}, c.RealIP())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "bulk attendance saved",
		"created": created,
	})
}

// studentStatsHandler handles GET /api/attendance/student/:id
func studentStatsHandler(c echo.Context) error {
	student, err := userRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "student not found",
			})
		}
		c.Logger().Error("student stats error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error fetching stats",
		})
	}

	stats, err := attendanceService.StudentStats(student)
	if err != nil {
		c.Logger().Error("student stats error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error fetching stats",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stats": stats,
	})
}

// todayAttendanceHandler handles GET /api/attendance/today/:id
func todayAttendanceHandler(c echo.Context) error {
	classIDs, err := attendanceService.TodayClassIDs(c.Param("id"))
	if err != nil {
		c.Logger().Error("today attendance error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error fetching today attendance",
		})
	}

	if classIDs == nil {
		classIDs = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"presentClassIds": classIDs,
	})
}

// courseStatsHandler handles GET /api/attendance/stats/course/:courseId
func courseStatsHandler(c echo.Context) error {
	overview, err := attendanceService.CourseOverview(c.Param("courseId"))
	if err != nil {
		c.Logger().Error("course stats error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error fetching course stats",
		})
	}

	return c.JSON(http.StatusOK, overview)
}

// courseRosterHandler handles GET /api/attendance/students/:courseCode
func courseRosterHandler(c echo.Context) error {
	roster, totalSessions, err := attendanceService.CourseRoster(c.Param("courseCode"), userRepo)
	if err != nil {
		if errors.Is(err, database.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "course not found",
			})
		}
		c.Logger().Error("course roster error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error fetching students",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"students":      roster,
		"totalSessions": totalSessions,
	})
}
