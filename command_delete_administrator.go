package admins

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeleteAdministratorMessage struct {
	ID       uuid.UUID `json:"id"`
	Actor    ActorRef
	OnResult func(admin *Administrator)
}

func (m DeleteAdministratorMessage) Type() string { return "administrator.delete" }

type DeleteAdministratorHandler struct {
	repo RepositoryManager
	cfg  handlerConfig
}

func NewDeleteAdministratorHandler(repo RepositoryManager, opts ...HandlerOption) *DeleteAdministratorHandler {
	return &DeleteAdministratorHandler{repo: repo, cfg: newHandlerConfig(opts...)}
}

func (h *DeleteAdministratorHandler) Execute(ctx context.Context, event DeleteAdministratorMessage) error {
	select {
	case <-ctx.Done():
		return cancelled(ctx, "administrator removal")
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteAdministratorHandler) execute(ctx context.Context, event DeleteAdministratorMessage) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if event.ID == uuid.Nil {
		return goerrors.New("administrator id is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	var deleted *Administrator
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		deleted, err = h.repo.Administrators().DeleteByIDTx(ctx, tx, event.ID)
		return err
	})
	if err != nil {
		return finalizeTxError(err, "administrator removal transaction failed")
	}

	recordActivity(ctx, h.cfg.activity, h.cfg.logger, ActivityEvent{
		EventType:       ActivityEventAdministratorDeleted,
		Actor:           event.Actor,
		AdministratorID: deleted.ID.String(),
		FromStatus:      deleted.Status,
		Metadata:        map[string]any{"username": deleted.Username},
		OccurredAt:      h.cfg.now(),
	})

	if event.OnResult != nil {
		event.OnResult(deleted)
	}

	return nil
}
