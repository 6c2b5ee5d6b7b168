package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_profile_service/internal/logger"
)

// RequestLogger puts a logger carrying the request id, method and path into
// the request context. It must run after middleware.RequestID.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			ctx := logger.WithLogger(req.Context(), map[string]interface{}{
				"request_id": id,
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// HideDotFiles answers 404 for any path under prefix that has a segment
// starting with a dot.
func HideDotFiles(prefix string) echo.MiddlewareFunc {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Request().URL.Path
			if strings.HasPrefix(p, prefix) {
				for _, seg := range strings.Split(p[len(prefix):], "/") {
					if strings.HasPrefix(seg, ".") {
						return echo.ErrNotFound
					}
				}
			}
			return next(c)
		}
	}
}
