package server

import (
	"net/http"

	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func registerRoutes(e *echo.Echo, authH *handler.AuthHandler, authGuard echo.MiddlewareFunc) {
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "API is running....")
	})

	auth := e.Group("/api/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	//logoutだけアクセストークン必須
	auth.POST("/logout", authH.Logout, authGuard)
	auth.POST("/refresh-token", authH.Refresh)
}
