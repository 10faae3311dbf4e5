package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
)

// listClassesHandler handles GET /api/classes
func listClassesHandler(c echo.Context) error {
	classes, err := classRepo.List()
	if err != nil {
		c.Logger().Error("list classes error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list classes",
		})
	}

	if classes == nil {
		classes = []*models.Class{}
	}
	return c.JSON(http.StatusOK, classes)
}

// listLecturerClassesHandler handles GET /api/classes/lecturer/:id
func listLecturerClassesHandler(c echo.Context) error {
	classes, err := classRepo.ListByLecturer(c.Param("id"))
	if err != nil {
		c.Logger().Error("list lecturer classes error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list classes",
		})
	}

	if classes == nil {
		classes = []*models.Class{}
	}
	return c.JSON(http.StatusOK, classes)
}

// createClassHandler handles POST /api/classes
func createClassHandler(c echo.Context) error {
	var req models.CreateClassRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.CourseCode == "" || req.CourseName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "course code and name are required",
		})
	}

	user := getUserFromContext(c)
	if req.LecturerID == "" {
		req.LecturerID = user.ID
	}
	if req.Lecturer == "" {
		req.Lecturer = user.FullName
	}

	class := &models.Class{
		Program:      req.Program,
		YearSemester: req.YearSemester,
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		Day:          req.Day,
		FromTime:     req.FromTime,
		ToTime:       req.ToTime,
		Venue:        req.Venue,
		Lecturer:     req.Lecturer,
		LecturerID:   req.LecturerID,
	}

	if err := classRepo.Create(class); err != nil {
		c.Logger().Error("create class error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "error creating class",
		})
	}

	auditRepo.Log(user.ID, user.FullName, models.ActionClassCreate, class.CourseCode, nil, c.RealIP())

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "class created",
		"class":   class,
	})
}

// updateClassHandler handles PUT /api/classes/:id (rescheduling)
func updateClassHandler(c echo.Context) error {
	var req models.UpdateClassRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	courseCode := c.Param("id")

	if err := classRepo.Update(courseCode, &req); err != nil {
		if errors.Is(err, database.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "class not found",
			})
		}
		c.Logger().Error("update class error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "server error updating class",
		})
	}

	user := getUserFromContext(c)
	auditRepo.Log(user.ID, user.FullName, models.ActionClassUpdate, courseCode, nil, c.RealIP())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "class updated",
	})
}
