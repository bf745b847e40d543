// Package frontend serves the embedded UI shell: the login page and
// the session-gated chat page.
package frontend

import (
	"context"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hrygo/promptdeck/internal/profile"
	"github.com/hrygo/promptdeck/internal/util"
	"github.com/hrygo/promptdeck/server/auth"
)

type FrontendService struct {
	Profile  *profile.Profile
	Sessions *auth.SessionManager
}

func NewFrontendService(profile *profile.Profile, sessions *auth.SessionManager) *FrontendService {
	return &FrontendService{
		Profile:  profile,
		Sessions: sessions,
	}
}

func (s *FrontendService) Serve(_ context.Context, e *echo.Echo) {
	// Don't compress API routes; the chat stream must flush per event.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return util.HasPrefixes(c.Path(), "/api", "/healthz", "/metrics")
		},
	}))

	// The chat page is a registered route gated by the session cookie;
	// keep it out of the static handler so the HTML5 fallback cannot
	// shadow it.
	e.GET("/chatbot", s.serveChatbot, s.Sessions.Middleware())

	skipper := func(c echo.Context) bool {
		if util.HasPrefixes(c.Path(), "/api", "/healthz", "/metrics", "/chatbot") {
			return true
		}

		c.Response().Header().Set("X-Content-Type-Options", "nosniff")

		// Pages carry no-cache headers so a logged-out browser can't
		// resurface the chat page from its back/forward cache.
		if strings.HasSuffix(c.Request().URL.Path, ".html") || c.Request().URL.Path == "/" {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
			c.Response().Header().Set("Pragma", "no-cache")
			c.Response().Header().Set("Expires", "0")
		} else {
			c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
		}
		return false
	}

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: getFileSystem("dist"),
		HTML5:      true,
		Skipper:    skipper,
	}))
}

func (s *FrontendService) serveChatbot(c echo.Context) error {
	page, err := embeddedFiles.ReadFile("dist/chatbot.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "chat page missing from build")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	c.Response().Header().Set("Pragma", "no-cache")
	c.Response().Header().Set("Expires", "0")
	return c.HTMLBlob(http.StatusOK, page)
}

func getFileSystem(path string) http.FileSystem {
	sub, err := fs.Sub(embeddedFiles, path)
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
