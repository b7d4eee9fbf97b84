package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-admins"
	"github.com/goliatone/go-admins/config"
	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-auth/middleware/csrf"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

type App struct {
	config   *gconfig.Container[*config.BaseConfig]
	bunDB    *bun.DB
	repo     admins.RepositoryManager
	authRepo auth.RepositoryManager
	auther   auth.HTTPAuthenticator
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("admins"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetApp().GetDebug() {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(cfg.Raw()))
		fmt.Println("============")
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}
	defer app.bunDB.Close()

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPAuth(ctx, app); err != nil {
		panic(err)
	}

	AdminRoutes(app)

	app.srv.Serve(app.Config().GetApp().GetAddress())

	sig := WaitExitSignal()
	app.GetLogger("app").Info("shutting down", "signal", sig.String())
}

func openDB(cfg *config.Persistence) (*sql.DB, schema.Dialect, error) {
	switch cfg.GetDriver() {
	case "postgres":
		db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.GetDSN())))
		return db, pgdialect.New(), nil
	case "sqlite", "":
		db, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(1)
		return db, sqlitedialect.New(), nil
	}
	return nil, nil, errors.New("unsupported persistence driver "+cfg.GetDriver(), errors.CategoryBadInput)
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.Config().GetPersistence()

	db, dialect, err := openDB(pcfg)
	if err != nil {
		return err
	}

	persistence.RegisterModel((*admins.Administrator)(nil))
	persistence.RegisterModel((*admins.PasswordReset)(nil))
	persistence.RegisterModel((*auth.User)(nil))
	persistence.RegisterModel((*auth.PasswordReset)(nil))

	client, err := persistence.New(pcfg, db, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	authMigrations, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		authMigrations,
		persistence.WithDialectSourceLabel("go-auth/data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	adminMigrations, err := fs.Sub(admins.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		adminMigrations,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	bunDB := client.DB()
	if pcfg.GetDebug() {
		bunDB.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if pcfg.GetSeed() {
		count, err := bunDB.NewSelect().Model((*admins.Administrator)(nil)).Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			client.RegisterFixtures(admins.GetFixturesFS())
			if err := client.Seed(ctx); err != nil {
				return err
			}
		}
	}

	if report := client.Report(); report != nil && !report.IsZero() {
		app.GetLogger("persistence").Info("migrations", "report", report.String())
	}

	app.bunDB = bunDB
	app.repo = admins.NewRepositoryManager(bunDB)
	app.repo.MustValidate()

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	vcfg := app.Config().GetViews()

	var engine *django.Engine
	if vcfg.GetEmbed() {
		engine = django.NewFileSystem(http.FS(admins.GetViewsFS()), vcfg.GetExtension())
	} else {
		engine = django.New(vcfg.GetDir(), vcfg.GetExtension())
	}
	engine.Reload(vcfg.GetReload())

	for name, helper := range admins.TemplateHelpers() {
		engine.AddFunc(name, helper)
	}

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.Config().GetApp().GetDebug(),
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	key := sha256.Sum256([]byte(app.Config().GetAuth().GetSigningKey()))
	srv.Router().Use(csrf.New(csrf.Config{
		SecureKey: key[:],
	}))

	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	app.srv = srv

	return nil
}

type userTrackerAdapter struct {
	users auth.Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	return a.users.TrackSucccessfulLogin(ctx, user)
}

// WithHTTPAuth builds the session authenticator and mounts the user router
func WithHTTPAuth(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()

	repo := auth.NewRepositoryManager(app.bunDB)
	if err := repo.Validate(); err != nil {
		return err
	}

	userProvider := auth.NewUserProvider(userTrackerAdapter{users: repo.Users()})
	authenticator := auth.NewAuthenticator(userProvider, cfg)

	httpAuth, err := auth.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		return err
	}

	app.authRepo = repo
	app.auther = httpAuth

	admins.MountUserRouter(app.srv.Router().Group("/"), admins.UserRouterConfig{
		Title:             app.Config().GetApp().GetName(),
		AdministratorsURL: app.Config().GetApp().GetMountPath() + "/administrators",
		Auther:            httpAuth,
		Repo:              repo,
		Profile:           admins.ProfileFromJWT(cfg.GetContextKey()),
		ViewData:          admins.CSRFViewData,
		Debug:             app.Config().GetApp().GetDebug(),
	})

	return nil
}

// AdminRoutes mounts the administrator back-office behind the session check
func AdminRoutes(app *App) {
	appCfg := app.Config().GetApp()
	authCfg := app.Config().GetAuth()
	logger := app.GetLogger("admins:ctrl")

	protected := app.auther.ProtectedRoute(authCfg, app.auther.MakeClientRouteAuthErrorHandler(false))

	group := app.srv.Router().Group(appCfg.GetMountPath())
	group.Use(protected)

	resetLinkBase := appCfg.GetResetLinkBase()
	notifier := admins.ResetNotifierFunc(func(ctx context.Context, reset *admins.PasswordReset) error {
		app.GetLogger("admins:reset").Info("password reset link",
			"to", reset.Email,
			"link", fmt.Sprintf("%s/password-reset/%s", resetLinkBase, reset.ID),
		)
		return nil
	})

	activity := admins.ActivitySinkFunc(func(ctx context.Context, event admins.ActivityEvent) error {
		app.GetLogger("admins:activity").Info(string(event.EventType),
			"actor", event.Actor.ID,
			"administrator_id", event.AdministratorID,
			"from", event.FromStatus,
			"to", event.ToStatus,
		)
		return nil
	})

	admins.RegisterAdministratorRoutes(group, func(c *admins.AdministratorController) *admins.AdministratorController {
		c.Debug = appCfg.GetDebug()
		c.Logger = logger
		c.Repo = app.repo
		c.MountPath = appCfg.GetMountPath()
		c.Profile = admins.ProfileFromJWT(authCfg.GetContextKey())
		c.ViewData = admins.CSRFViewData
		c.HandlerOptions = []admins.HandlerOption{
			admins.WithHandlerLogger(app.GetLogger("admins:cmd")),
			admins.WithResetNotifier(notifier),
			admins.WithHandlerActivitySink(activity),
			admins.WithHashidIDs(appCfg.GetHashidIDs()),
		}
		return c
	})
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
