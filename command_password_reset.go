package admins

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ResetPasswordMessage locks the password of an administrator and asks
// for a reset link to be delivered.
type ResetPasswordMessage struct {
	ID       uuid.UUID `json:"id"`
	Actor    ActorRef
	OnResult func(reset *PasswordReset)
}

func (m ResetPasswordMessage) Type() string { return "administrator.password_reset" }

// ResetPasswordHandler replaces the password hash with the reset marker,
// stores a PasswordReset request and hands it to the ResetNotifier once
// the transaction is committed.
type ResetPasswordHandler struct {
	repo RepositoryManager
	cfg  handlerConfig
}

func NewResetPasswordHandler(repo RepositoryManager, opts ...HandlerOption) *ResetPasswordHandler {
	return &ResetPasswordHandler{repo: repo, cfg: newHandlerConfig(opts...)}
}

func (h *ResetPasswordHandler) Execute(ctx context.Context, event ResetPasswordMessage) error {
	select {
	case <-ctx.Done():
		return cancelled(ctx, "administrator password reset")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResetPasswordHandler) execute(ctx context.Context, event ResetPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if event.ID == uuid.Nil {
		return goerrors.New("administrator id is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	var reset *PasswordReset
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		admin, err := h.repo.Administrators().MarkPasswordResetTx(ctx, tx, event.ID)
		if err != nil {
			return err
		}

		now := h.cfg.now()
		record := &PasswordReset{
			ID:              uuid.New(),
			AdministratorID: admin.ID,
			Email:           admin.Email,
			Status:          ResetRequestedStatus,
			RequestedBy:     event.Actor.ID,
			CreatedAt:       &now,
		}

		created, err := h.repo.PasswordResets().CreateTx(ctx, tx, record)
		if err != nil {
			return classifyStoreError(err, map[string]any{"administrator_id": admin.ID.String()})
		}
		reset = created
		return nil
	})
	if err != nil {
		return finalizeTxError(err, "administrator password reset transaction failed")
	}

	if err := h.cfg.notifier.NotifyPasswordReset(ctx, reset); err != nil {
		h.cfg.logger.Error("password reset notification failed",
			"administrator_id", reset.AdministratorID.String(),
			"error", err,
		)
	}

	recordActivity(ctx, h.cfg.activity, h.cfg.logger, ActivityEvent{
		EventType:       ActivityEventAdministratorPasswordReset,
		Actor:           event.Actor,
		AdministratorID: reset.AdministratorID.String(),
		Metadata:        map[string]any{"reset_id": reset.ID.String()},
		OccurredAt:      h.cfg.now(),
	})

	if event.OnResult != nil {
		event.OnResult(reset)
	}

	return nil
}
