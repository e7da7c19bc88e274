// Package web serves the embedded login and app pages
package web

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed pages/*.html
var pages embed.FS

// page returns a handler serving one embedded page
func page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := pages.ReadFile("pages/" + name)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		return c.HTMLBlob(http.StatusOK, body)
	}
}

// Register adds the page routes to e
func Register(e *echo.Echo) {
	login := page("login.html")
	app := page("app.html")

	e.GET("/", login)
	e.GET("/login", login)
	e.GET("/login.html", login)
	e.GET("/app", app)
	e.GET("/app.html", app)
}
