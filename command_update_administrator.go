package admins

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateAdministratorMessage replaces the editable fields of a record
type UpdateAdministratorMessage struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Actor    ActorRef
	OnResult func(admin *Administrator)
}

func (m UpdateAdministratorMessage) Type() string { return "administrator.update" }

func (m UpdateAdministratorMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.By(func(value any) error {
			if id, _ := value.(uuid.UUID); id == uuid.Nil {
				return errors.New("cannot be blank")
			}
			return nil
		})),
		validation.Field(&m.Username, validation.Required),
		validation.Field(&m.Email, validation.Required),
		validation.Field(&m.Role, validation.Required),
	)
}

// UpdateAdministratorHandler applies field edits. Password and status
// have their own commands.
type UpdateAdministratorHandler struct {
	repo RepositoryManager
	cfg  handlerConfig
}

func NewUpdateAdministratorHandler(repo RepositoryManager, opts ...HandlerOption) *UpdateAdministratorHandler {
	return &UpdateAdministratorHandler{repo: repo, cfg: newHandlerConfig(opts...)}
}

func (h *UpdateAdministratorHandler) Execute(ctx context.Context, event UpdateAdministratorMessage) error {
	select {
	case <-ctx.Done():
		return cancelled(ctx, "administrator update")
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateAdministratorHandler) execute(ctx context.Context, event UpdateAdministratorMessage) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid administrator update request").
			WithCode(goerrors.CodeBadRequest)
	}

	var updated *Administrator
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		updated, err = h.repo.Administrators().UpdateFieldsTx(ctx, tx, event.ID, AdministratorFields{
			Username: event.Username,
			Email:    event.Email,
			Role:     event.Role,
		})
		return err
	})
	if err != nil {
		return finalizeTxError(err, "administrator update transaction failed")
	}

	recordActivity(ctx, h.cfg.activity, h.cfg.logger, ActivityEvent{
		EventType:       ActivityEventAdministratorUpdated,
		Actor:           event.Actor,
		AdministratorID: updated.ID.String(),
		Metadata: map[string]any{
			"username": updated.Username,
			"email":    updated.Email,
			"role":     updated.Role,
		},
		OccurredAt: h.cfg.now(),
	})

	if event.OnResult != nil {
		event.OnResult(updated)
	}

	return nil
}
