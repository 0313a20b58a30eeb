package inkpress

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if a.Config.AdminPassword == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return Render(c, a.Views.AdminHome(CsrfToken(c), c.QueryParam("msg")))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if a.Config.AdminPassword == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminReload forces a content reload, for edits that arrive outside
// the watcher (rsync, git pull with watching disabled).
func (a *App) handleAdminReload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.reloadContent(); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=reloaded")
}
