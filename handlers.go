package inkpress

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/content"
)

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	posts := a.Library.Posts(tag)
	tags := a.Library.Tags()
	return Render(c, a.Views.Home(posts, tag, tags, a.Config.URL))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Library.Get(slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	related := a.Library.Related(post, relatedPostLimit)
	return Render(c, a.Views.Post(post, related, a.Config.URL))
}

// relatedPostLimit caps the "more like this" section on post pages.
const relatedPostLimit = 3

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Library.Posts(""))
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Library.Posts(""))
}

func (a *App) handleLlmsTxt(c echo.Context) error {
	doc := LlmsTxt(a.Config, a.Library.Posts(""))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

func (a *App) handleLlmsFullTxt(c echo.Context) error {
	doc := LlmsFullTxt(a.Config, a.Library.Posts(""))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n\n")
	b.WriteString("Sitemap: " + strings.TrimSuffix(a.Config.URL, "/") + "/sitemap.xml\n")
	// Non-standard but increasingly recognized by LLM crawlers.
	b.WriteString("# LLM guidance: " + strings.TrimSuffix(a.Config.URL, "/") + "/llms.txt\n")
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
