package admins

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// Flash keys read by the administrator templates
const (
	FlashSuccess       = "success"
	FlashFail          = "fail"
	FlashUpdateSuccess = "updateSuccess"
	FlashUpdateFail    = "updateFail"
	FlashStatusSuccess = "statusSuccess"
	FlashStatusFail    = "statusFail"
	FlashResetSuccess  = "resetSuccess"
	FlashResetFail     = "resetFail"
	FlashDeleteSuccess = "deleteSuccess"
	FlashDeleteFail    = "deleteFail"
)

const (
	msgAddSuccess    = "Successfully. A new administrator was added."
	msgUpdateSuccess = "Successfully. All changes were saved."
	msgStatusSuccess = "Successfully. The status was changed to '%s'"
	msgResetSuccess  = "Successfully. A link was sent to email for setting up a new password."
	msgDeleteSuccess = "Successfully. The administrator was removed from the database."
	msgFailed        = "Failed. An error occurred during the process."
	msgDeleteFailed  = "Failed. An error occurred during the process"
)

// Content values select the partial rendered by the base view
const (
	ContentList   = "administrators"
	ContentAdd    = "add"
	ContentUpdate = "update"
)

func RegisterAdministratorRoutes[T any](app router.Router[T], opts ...AdministratorControllerOption) *AdministratorController {
	controller := NewAdministratorController(opts...)

	app.Get(controller.Routes.List, controller.List).
		SetName("administrators.list")

	app.Get(controller.Routes.Add, controller.AddShow).
		SetName("administrators.add.get")
	app.Post(controller.Routes.Add, controller.AddPost).
		SetName("administrators.add.post")

	app.Get(controller.Routes.Update, controller.UpdateShow).
		SetName("administrators.update.get")
	app.Post(controller.Routes.Update, controller.UpdatePost).
		SetName("administrators.update.post")

	app.Post(controller.Routes.Activate, controller.Activate).
		SetName("administrators.activate.post")
	app.Post(controller.Routes.Deactivate, controller.Deactivate).
		SetName("administrators.deactivate.post")

	app.Post(controller.Routes.ResetPassword, controller.ResetPassword).
		SetName("administrators.reset_password.post")

	app.Post(controller.Routes.Delete, controller.Delete).
		SetName("administrators.delete.post")

	return controller
}

// AdministratorRoutes are relative to the admin mount path
type AdministratorRoutes struct {
	List          string
	Add           string
	Update        string
	Activate      string
	Deactivate    string
	ResetPassword string
	Delete        string
}

type AdministratorViews struct {
	Base        string
	NotFound    string
	Unavailable string
}

// ViewDataDecorator adds request scoped values to every rendered page
type ViewDataDecorator func(ctx router.Context, data router.ViewContext) router.ViewContext

type AdministratorController struct {
	Debug     bool
	Logger    Logger
	Repo      RepositoryManager
	Validator *Validator
	Handlers  Handlers
	MountPath string
	Routes    *AdministratorRoutes
	Views     *AdministratorViews
	Flash     FlashStore
	Profile   ProfileResolver
	ViewData  ViewDataDecorator
	// HandlerOptions are used when Handlers is not set
	HandlerOptions []HandlerOption
}

type AdministratorControllerOption func(*AdministratorController) *AdministratorController

func NewAdministratorController(opts ...AdministratorControllerOption) *AdministratorController {
	c := &AdministratorController{
		Logger:    defLogger{},
		MountPath: "/admin",
		Flash:     RouterFlash{},
		Profile:   func(router.Context) Profile { return Profile{} },
		Routes: &AdministratorRoutes{
			List:          "/administrators",
			Add:           "/administrators/add",
			Update:        "/administrators/update/:username",
			Activate:      "/administrators/activate/:username",
			Deactivate:    "/administrators/deactivate/:username",
			ResetPassword: "/administrators/reset_password",
			Delete:        "/administrators/delete",
		},
		Views: &AdministratorViews{
			Base:        "admin/administrator/administrator_base",
			NotFound:    "errors/404",
			Unavailable: "errors/500",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in administrator controller...")
	}

	if c.Validator == nil {
		c.Validator = NewValidator(c.Repo.Administrators())
	}

	if c.Handlers.Create == nil {
		opts := append([]HandlerOption{WithHandlerLogger(c.Logger)}, c.HandlerOptions...)
		c.Handlers = NewHandlers(c.Repo, nil, opts...)
	}

	return c
}

func (a *AdministratorController) List(ctx router.Context) error {
	records, err := a.Repo.Administrators().ListAll(ctx.Context())
	if err != nil {
		return a.renderError(ctx, err)
	}

	return a.render(ctx, router.ViewContext{
		"content":        ContentList,
		"administrators": AdministratorsToView(records),
	})
}

func (a *AdministratorController) AddShow(ctx router.Context) error {
	return a.render(ctx, router.ViewContext{
		"content":    ContentAdd,
		"roles":      GetAllRoles(),
		"errors":     map[string]string{},
		"validInput": map[string]string{},
	})
}

func (a *AdministratorController) AddPost(ctx router.Context) error {
	payload := new(AdministratorInput)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("administrator add parse payload", "error", err)
		return a.flashRedirect(ctx, FlashFail, msgFailed, a.url(a.Routes.Add))
	}

	input, result, err := a.Validator.ValidateAdd(ctx.Context(), *payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	if result.HasError {
		return a.render(ctx, router.ViewContext{
			"content":    ContentAdd,
			"roles":      GetAllRoles(),
			"errors":     result.ErrorMap(),
			"errorList":  result.Errors,
			"validInput": result.ValidInput,
		})
	}

	var created *Administrator
	err = a.Handlers.Create.Execute(ctx.Context(), CreateAdministratorMessage{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
		Actor:    ActorFromProfile(a.Profile(ctx)),
		OnResult: func(admin *Administrator) {
			created = admin
		},
	})

	if err != nil {
		if IsStoreUnavailable(err) {
			return a.renderError(ctx, err)
		}
		a.Logger.Warn("administrator add failed", "error", err)
		return a.flashRedirect(ctx, FlashFail, msgFailed, a.url(a.Routes.Add))
	}

	a.debug("administrator created", created)

	return a.flashRedirect(ctx, FlashSuccess, msgAddSuccess, a.url(a.Routes.Add))
}

func (a *AdministratorController) UpdateShow(ctx router.Context) error {
	admin, err := a.Repo.Administrators().FindByUsername(ctx.Context(), ctx.Param("username"))
	if err != nil {
		return a.renderError(ctx, err)
	}

	return a.render(ctx, router.ViewContext{
		"content":    ContentUpdate,
		"roles":      GetAllRoles(),
		"admin":      AdministratorToView(admin),
		"errors":     map[string]string{},
		"validInput": map[string]string{},
	})
}

func (a *AdministratorController) UpdatePost(ctx router.Context) error {
	admin, err := a.Repo.Administrators().FindByUsername(ctx.Context(), ctx.Param("username"))
	if err != nil {
		return a.renderError(ctx, err)
	}

	payload := new(AdministratorInput)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("administrator update parse payload", "error", err)
		return a.flashRedirect(ctx, FlashUpdateFail, msgFailed, a.updateURL(admin.Username))
	}

	input, result, err := a.Validator.ValidateUpdate(ctx.Context(), admin.ID, *payload)
	if err != nil {
		return a.renderError(ctx, err)
	}

	if result.HasError {
		return a.render(ctx, router.ViewContext{
			"content":    ContentUpdate,
			"roles":      GetAllRoles(),
			"admin":      AdministratorToView(admin),
			"errors":     result.ErrorMap(),
			"errorList":  result.Errors,
			"validInput": result.ValidInput,
		})
	}

	var updated *Administrator
	err = a.Handlers.Update.Execute(ctx.Context(), UpdateAdministratorMessage{
		ID:       admin.ID,
		Username: input.Username,
		Email:    input.Email,
		Role:     input.Role,
		Actor:    ActorFromProfile(a.Profile(ctx)),
		OnResult: func(record *Administrator) {
			updated = record
		},
	})

	if err != nil {
		if IsNotFound(err) || IsStoreUnavailable(err) {
			return a.renderError(ctx, err)
		}
		a.Logger.Warn("administrator update failed", "username", admin.Username, "error", err)
		return a.flashRedirect(ctx, FlashUpdateFail, msgFailed, a.updateURL(admin.Username))
	}

	a.debug("administrator updated", updated)

	return a.flashRedirect(ctx, FlashUpdateSuccess, msgUpdateSuccess, a.updateURL(updated.Username))
}

func (a *AdministratorController) Activate(ctx router.Context) error {
	return a.changeStatus(ctx, StatusActivated)
}

func (a *AdministratorController) Deactivate(ctx router.Context) error {
	return a.changeStatus(ctx, StatusDeactivated)
}

func (a *AdministratorController) changeStatus(ctx router.Context, target AdministratorStatus) error {
	username := ctx.Param("username")

	err := a.Handlers.ChangeStatus.Execute(ctx.Context(), ChangeStatusMessage{
		Username: username,
		Target:   target,
		Actor:    ActorFromProfile(a.Profile(ctx)),
	})

	if err != nil {
		if IsStoreUnavailable(err) {
			return a.renderError(ctx, err)
		}
		a.Logger.Warn("administrator status change failed", "username", username, "target", target, "error", err)
		return a.flashRedirect(ctx, FlashStatusFail, msgFailed, a.url(a.Routes.List))
	}

	return a.flashRedirect(ctx, FlashStatusSuccess, fmt.Sprintf(msgStatusSuccess, target), a.url(a.Routes.List))
}

// RecordIDPayload is the form body of reset_password and delete
type RecordIDPayload struct {
	ID string `form:"id" json:"id"`
}

func (a *AdministratorController) ResetPassword(ctx router.Context) error {
	id, ok := a.bindRecordID(ctx)
	if !ok {
		return a.flashRedirect(ctx, FlashResetFail, msgFailed, a.url(a.Routes.List))
	}

	var reset *PasswordReset
	err := a.Handlers.ResetPassword.Execute(ctx.Context(), ResetPasswordMessage{
		ID:    id,
		Actor: ActorFromProfile(a.Profile(ctx)),
		OnResult: func(r *PasswordReset) {
			reset = r
		},
	})

	if err != nil {
		if IsStoreUnavailable(err) {
			return a.renderError(ctx, err)
		}
		a.Logger.Warn("administrator password reset failed", "id", id.String(), "error", err)
		return a.flashRedirect(ctx, FlashResetFail, msgFailed, a.url(a.Routes.List))
	}

	a.debug("administrator password reset", reset)

	return a.flashRedirect(ctx, FlashResetSuccess, msgResetSuccess, a.url(a.Routes.List))
}

func (a *AdministratorController) Delete(ctx router.Context) error {
	id, ok := a.bindRecordID(ctx)
	if !ok {
		return a.flashRedirect(ctx, FlashDeleteFail, msgDeleteFailed, a.url(a.Routes.List))
	}

	err := a.Handlers.Delete.Execute(ctx.Context(), DeleteAdministratorMessage{
		ID:    id,
		Actor: ActorFromProfile(a.Profile(ctx)),
	})

	if err != nil {
		if IsStoreUnavailable(err) {
			return a.renderError(ctx, err)
		}
		a.Logger.Warn("administrator delete failed", "id", id.String(), "error", err)
		return a.flashRedirect(ctx, FlashDeleteFail, msgDeleteFailed, a.url(a.Routes.List))
	}

	return a.flashRedirect(ctx, FlashDeleteSuccess, msgDeleteSuccess, a.url(a.Routes.List))
}

func (a *AdministratorController) bindRecordID(ctx router.Context) (uuid.UUID, bool) {
	payload := new(RecordIDPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("administrator parse record id", "error", err)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(strings.TrimSpace(payload.ID))
	if err != nil {
		a.Logger.Warn("administrator invalid record id", "id", payload.ID)
		return uuid.Nil, false
	}
	return id, true
}

func (a *AdministratorController) render(ctx router.Context, data router.ViewContext) error {
	return ctx.Render(a.Views.Base, a.decorate(ctx, data))
}

func (a *AdministratorController) decorate(ctx router.Context, data router.ViewContext) router.ViewContext {
	data["information"] = a.Profile(ctx)
	data["mountPath"] = a.url("")
	data["urls"] = a.viewURLs()
	if a.ViewData != nil {
		data = a.ViewData(ctx, data)
	}
	return data
}

// renderError picks the error page from the error kind. Missing records
// get a 404, anything else is a store failure and gets a 503.
func (a *AdministratorController) renderError(ctx router.Context, err error) error {
	data := router.ViewContext{
		"redirectLink": a.url(a.Routes.List),
	}

	if IsNotFound(err) {
		a.Logger.Info("administrator not found", "error", err)
		data["message"] = "The administrator could not be found."
		return ctx.Status(fiber.StatusNotFound).Render(a.Views.NotFound, a.decorate(ctx, data))
	}

	a.Logger.Error("administrator store failure", "error", err)
	data["message"] = "The service is temporarily unavailable."
	return ctx.Status(fiber.StatusServiceUnavailable).Render(a.Views.Unavailable, a.decorate(ctx, data))
}

func (a *AdministratorController) flashRedirect(ctx router.Context, key, message, to string) error {
	return a.Flash.Flash(ctx, key, message).Redirect(to, fiber.StatusSeeOther)
}

func (a *AdministratorController) url(route string) string {
	return strings.TrimRight(a.MountPath, "/") + route
}

func (a *AdministratorController) updateURL(username string) string {
	return a.url(strings.Replace(a.Routes.Update, ":username", username, 1))
}

// viewURLs are the form targets used by the templates. Routes taking a
// username end with the prefix the template appends it to.
func (a *AdministratorController) viewURLs() map[string]string {
	withUsername := func(route string) string {
		return a.url(strings.Replace(route, ":username", "", 1))
	}
	return map[string]string{
		"list":           a.url(a.Routes.List),
		"add":            a.url(a.Routes.Add),
		"update":         withUsername(a.Routes.Update),
		"activate":       withUsername(a.Routes.Activate),
		"deactivate":     withUsername(a.Routes.Deactivate),
		"reset_password": a.url(a.Routes.ResetPassword),
		"delete":         a.url(a.Routes.Delete),
	}
}

func (a *AdministratorController) debug(msg string, v any) {
	if !a.Debug {
		return
	}
	a.Logger.Debug(msg, "record", print.MaybePrettyJSON(v))
}
