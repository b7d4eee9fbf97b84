package admins

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ChangeStatusMessage activates or deactivates the administrator
// identified by username.
type ChangeStatusMessage struct {
	Username string              `json:"username"`
	Target   AdministratorStatus `json:"target"`
	Reason   string              `json:"reason,omitempty"`
	Actor    ActorRef
	OnResult func(admin *Administrator)
}

func (m ChangeStatusMessage) Type() string { return "administrator.status" }

// ChangeStatusHandler runs status changes through the StatusMachine
type ChangeStatusHandler struct {
	repo    RepositoryManager
	machine StatusMachine
	cfg     handlerConfig
}

func NewChangeStatusHandler(repo RepositoryManager, machine StatusMachine, opts ...HandlerOption) *ChangeStatusHandler {
	cfg := newHandlerConfig(opts...)
	if machine == nil {
		machine = NewStatusMachine(
			repo.Administrators(),
			WithStatusMachineActivitySink(cfg.activity),
			WithStatusMachineLogger(cfg.logger),
			WithStatusMachineClock(cfg.now),
		)
	}
	return &ChangeStatusHandler{repo: repo, machine: machine, cfg: cfg}
}

func (h *ChangeStatusHandler) Execute(ctx context.Context, event ChangeStatusMessage) error {
	select {
	case <-ctx.Done():
		return cancelled(ctx, "administrator status change")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangeStatusHandler) execute(ctx context.Context, event ChangeStatusMessage) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	username := strings.TrimSpace(event.Username)
	if username == "" {
		return goerrors.New("username is required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	opts := []TransitionOption{}
	if event.Reason != "" {
		opts = append(opts, WithTransitionReason(event.Reason))
	}

	var result *Administrator
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		admin, err := h.repo.Administrators().FindByUsernameTx(ctx, tx, username)
		if err != nil {
			return err
		}

		result, err = h.machine.TransitionTx(ctx, tx, event.Actor, admin, event.Target, opts...)
		return err
	})
	if err != nil {
		return finalizeTxError(err, "administrator status transaction failed")
	}

	if event.OnResult != nil {
		event.OnResult(result)
	}

	return nil
}
