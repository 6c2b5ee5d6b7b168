package serviceutils

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_profile_service/internal/logger"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ResponseError writes a failed envelope. Server side failures are logged
// as errors, client errors at debug level.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		if status >= 500 {
			logger.ErrorLog(c.Request().Context(), message, err)
		} else {
			logger.DebugLog(c.Request().Context(), "%s (%d): %v", message, status, err)
		}
	}
	return c.JSON(status, resp)
}
