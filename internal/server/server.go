package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはechoを組み立てて返す。起動はmain側で行う。
func New(cfg config.Config, authH *handler.AuthHandler, authGuard echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	//cookieを使うのでcredentials付きCORS
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))

	e.Use(echomw.BodyLimit("16K"))

	//publicの静的ファイル配信
	e.Use(echomw.Static("public"))

	registerRoutes(e, authH, authGuard)

	return e
}
