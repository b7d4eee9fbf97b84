package admins

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// commandTimeout bounds every lifecycle command
const commandTimeout = time.Second * 10

// HandlerOption configures the lifecycle command handlers
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	activity  ActivitySink
	logger    Logger
	notifier  ResetNotifier
	useHashid bool
	now       func() time.Time
}

func newHandlerConfig(opts ...HandlerOption) handlerConfig {
	cfg := handlerConfig{
		activity: noopActivitySink{},
		logger:   defLogger{},
		notifier: logNotifier{logger: defLogger{}},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithHandlerActivitySink sets the sink receiving lifecycle events
func WithHandlerActivitySink(sink ActivitySink) HandlerOption {
	return func(c *handlerConfig) {
		c.activity = normalizeActivitySink(sink)
	}
}

// WithHandlerLogger sets the handler logger
func WithHandlerLogger(logger Logger) HandlerOption {
	return func(c *handlerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithResetNotifier sets who gets told about password resets
func WithResetNotifier(notifier ResetNotifier) HandlerOption {
	return func(c *handlerConfig) {
		if notifier != nil {
			c.notifier = notifier
		}
	}
}

// WithHashidIDs derives new record ids from the email address
func WithHashidIDs(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.useHashid = enabled
	}
}

// WithHandlerClock injects a custom clock (useful for tests).
func WithHandlerClock(clock func() time.Time) HandlerOption {
	return func(c *handlerConfig) {
		if clock != nil {
			c.now = clock
		}
	}
}

// Handlers groups every lifecycle command handler
type Handlers struct {
	Create        *CreateAdministratorHandler
	Update        *UpdateAdministratorHandler
	ChangeStatus  *ChangeStatusHandler
	ResetPassword *ResetPasswordHandler
	Delete        *DeleteAdministratorHandler
}

// NewHandlers builds all handlers sharing the same options
func NewHandlers(repo RepositoryManager, machine StatusMachine, opts ...HandlerOption) Handlers {
	return Handlers{
		Create:        NewCreateAdministratorHandler(repo, opts...),
		Update:        NewUpdateAdministratorHandler(repo, opts...),
		ChangeStatus:  NewChangeStatusHandler(repo, machine, opts...),
		ResetPassword: NewResetPasswordHandler(repo, opts...),
		Delete:        NewDeleteAdministratorHandler(repo, opts...),
	}
}

func cancelled(ctx context.Context, operation string) error {
	return goerrors.Wrap(
		ctx.Err(),
		goerrors.CategoryOperation,
		"context cancelled during "+operation,
	)
}

// finalizeTxError keeps tagged errors intact so callers can still tell
// not found apart from a store failure.
func finalizeTxError(err error, message string) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(textCodeStoreUnavailable).
		WithCode(goerrors.CodeInternal)
}

type logNotifier struct {
	logger Logger
}

func (n logNotifier) NotifyPasswordReset(_ context.Context, reset *PasswordReset) error {
	if reset == nil {
		return nil
	}
	n.logger.Info("password reset requested",
		"to", reset.Email,
		"link", "/password-reset/"+reset.ID.String(),
	)
	return nil
}
