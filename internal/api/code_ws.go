package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// CodeFeedMessage is one push on the live code feed
type CodeFeedMessage struct {
	Code     string `json:"code"`
	TimeLeft int64  `json:"timeLeft"`
	Error    string `json:"error,omitempty"`
}

// codeFeedHandler handles GET /api/attendance/code/ws. It pushes the
// current code and its remaining validity to the lecturer display on
// every rotation, replacing the polling loop. Authentication comes
// from a query parameter since browsers cannot set headers on
// WebSocket upgrades.
func codeFeedHandler(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}

	user, _, err := authService.ValidateToken(token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid or expired session",
		})
	}
	if !user.IsLecturer() {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "insufficient permissions",
		})
	}

	classID := c.QueryParam("classId")
	if classID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "class ID required",
		})
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	// Swallow client messages so pings and close frames are processed
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		grant, err := attendanceService.RequestCode(classID, user.ID, c.RealIP())
		if err != nil {
			ws.WriteJSON(CodeFeedMessage{Error: "failed to refresh code"})
			return nil
		}

		if err := ws.WriteJSON(CodeFeedMessage{Code: grant.Code, TimeLeft: grant.ExpiresInMs}); err != nil {
			return nil
		}

		// Wake just after the step boundary so the next push carries
		// the rotated code
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-time.After(time.Duration(grant.ExpiresInMs)*time.Millisecond + 100*time.Millisecond):
		}
	}
}
