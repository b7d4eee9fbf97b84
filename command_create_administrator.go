package admins

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateAdministratorMessage carries an add request that already passed
// validation.
type CreateAdministratorMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Actor    ActorRef
	OnResult func(admin *Administrator)
}

func (m CreateAdministratorMessage) Type() string { return "administrator.create" }

// Validate checks the message carries every field
func (m CreateAdministratorMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required),
		validation.Field(&m.Email, validation.Required),
		validation.Field(&m.Password, validation.Required),
		validation.Field(&m.Role, validation.Required),
	)
}

// CreateAdministratorHandler stores new administrators
type CreateAdministratorHandler struct {
	repo RepositoryManager
	cfg  handlerConfig
}

// NewCreateAdministratorHandler returns a handler backed by repo
func NewCreateAdministratorHandler(repo RepositoryManager, opts ...HandlerOption) *CreateAdministratorHandler {
	return &CreateAdministratorHandler{repo: repo, cfg: newHandlerConfig(opts...)}
}

func (h *CreateAdministratorHandler) Execute(ctx context.Context, event CreateAdministratorMessage) error {
	select {
	case <-ctx.Done():
		return cancelled(ctx, "administrator creation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateAdministratorHandler) execute(ctx context.Context, event CreateAdministratorMessage) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid administrator creation request").
			WithCode(goerrors.CodeBadRequest)
	}

	admin := &Administrator{
		Username: event.Username,
		Email:    event.Email,
		Role:     event.Role,
		Status:   StatusActivated,
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	admin.PasswordHash = hash

	if h.cfg.useHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			admin.ID = id
		}
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// the email may have belonged to a record that was since renamed
		if admin.ID != uuid.Nil {
			if _, err := h.repo.Administrators().FindByIDTx(ctx, tx, admin.ID); err == nil {
				admin.ID = uuid.New()
			} else if !IsNotFound(err) {
				return err
			}
		}

		created, err := h.repo.Administrators().InsertTx(ctx, tx, admin)
		if err != nil {
			return err
		}
		admin = created
		return nil
	})
	if err != nil {
		return finalizeTxError(err, "administrator creation transaction failed")
	}

	recordActivity(ctx, h.cfg.activity, h.cfg.logger, ActivityEvent{
		EventType:       ActivityEventAdministratorCreated,
		Actor:           event.Actor,
		AdministratorID: admin.ID.String(),
		ToStatus:        admin.Status,
		Metadata: map[string]any{
			"username": admin.Username,
			"role":     admin.Role,
		},
		OccurredAt: h.cfg.now(),
	})

	if event.OnResult != nil {
		event.OnResult(admin)
	}

	return nil
}
