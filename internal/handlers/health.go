package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthCheck reports whether the service can reach PostgreSQL
func HealthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		status, code := "healthy", http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		return c.JSON(code, map[string]string{
			"status":  status,
			"service": "lostfound-api",
		})
	}
}
