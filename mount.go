package admins

import (
	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-router"
)

// UserRouterConfig wires the public user router
type UserRouterConfig struct {
	IndexPath string
	IndexView string
	Title     string
	Auther    auth.HTTPAuthenticator
	Repo      auth.RepositoryManager
	Profile   ProfileResolver
	ViewData  ViewDataDecorator
	Debug     bool

	// AdministratorsURL is the back-office link shown in the layout
	AdministratorsURL string
}

// MountUserRouter registers the index page and the user authentication
// routes (login, logout, register, password reset) on app.
func MountUserRouter[T any](app router.Router[T], cfg UserRouterConfig) {
	if cfg.IndexPath == "" {
		cfg.IndexPath = "/"
	}

	if cfg.IndexView == "" {
		cfg.IndexView = "index"
	}

	app.Get(cfg.IndexPath, IndexHandler(cfg)).SetName("index.get")

	if cfg.Auther == nil || cfg.Repo == nil {
		return
	}

	auth.RegisterAuthRoutes(app, func(ac *auth.AuthController) *auth.AuthController {
		ac.Debug = cfg.Debug
		ac.Auther = cfg.Auther
		ac.Repo = cfg.Repo
		return ac
	})
}

// IndexHandler renders the public landing page
func IndexHandler(cfg UserRouterConfig) router.HandlerFunc {
	view := cfg.IndexView
	if view == "" {
		view = "index"
	}

	return func(ctx router.Context) error {
		data := router.ViewContext{
			"title": cfg.Title,
		}

		if cfg.AdministratorsURL != "" {
			data["urls"] = map[string]string{"list": cfg.AdministratorsURL}
		}

		if cfg.Profile != nil {
			data["information"] = cfg.Profile(ctx)
		}

		if cfg.ViewData != nil {
			data = cfg.ViewData(ctx, data)
		}

		return ctx.Render(view, data)
	}
}
