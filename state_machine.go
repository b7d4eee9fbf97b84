package admins

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor         ActorRef
	Administrator *Administrator
	From          AdministratorStatus
	To            AdministratorStatus
	Meta          TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// StatusMachine moves administrators between Activated and Deactivated.
type StatusMachine interface {
	Transition(ctx context.Context, actor ActorRef, admin *Administrator, target AdministratorStatus, opts ...TransitionOption) (*Administrator, error)
	TransitionTx(ctx context.Context, tx bun.IDB, actor ActorRef, admin *Administrator, target AdministratorStatus, opts ...TransitionOption) (*Administrator, error)
	CurrentStatus(admin *Administrator) AdministratorStatus
}

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// StatusMachineOption customizes state machine construction.
type StatusMachineOption func(*statusMachine)

// WithStatusMachineClock injects a custom clock (useful for tests).
func WithStatusMachineClock(clock func() time.Time) StatusMachineOption {
	return func(sm *statusMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStatusMachineActivitySink sets the sink that receives status change events.
func WithStatusMachineActivitySink(sink ActivitySink) StatusMachineOption {
	return func(sm *statusMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStatusMachineHookErrorHandler overrides how hook failures are propagated.
// By default the hook error is returned as is.
func WithStatusMachineHookErrorHandler(handler HookErrorHandler) StatusMachineOption {
	return func(sm *statusMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// WithStatusMachineLogger overrides the logger used for sink failures.
func WithStatusMachineLogger(logger Logger) StatusMachineOption {
	return func(sm *statusMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the status update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the status update succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// NewStatusMachine returns the default implementation backed by the store.
func NewStatusMachine(store Administrators, opts ...StatusMachineOption) StatusMachine {
	sm := &statusMachine{
		store: store,
		transitions: map[AdministratorStatus]AdministratorStatus{
			StatusActivated:   StatusDeactivated,
			StatusDeactivated: StatusActivated,
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type statusMachine struct {
	store            Administrators
	transitions      map[AdministratorStatus]AdministratorStatus
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

func (o *transitionOptions) cloneMetadata() TransitionMetadata {
	var cloned map[string]any
	if len(o.metadata.Metadata) > 0 {
		cloned = make(map[string]any, len(o.metadata.Metadata))
		for k, v := range o.metadata.Metadata {
			cloned[k] = v
		}
	}

	return TransitionMetadata{
		Reason:   o.metadata.Reason,
		Metadata: cloned,
	}
}

func (sm *statusMachine) Transition(ctx context.Context, actor ActorRef, admin *Administrator, target AdministratorStatus, opts ...TransitionOption) (*Administrator, error) {
	return sm.TransitionTx(ctx, nil, actor, admin, target, opts...)
}

// TransitionTx writes the new status only if the stored status is still
// the opposite of target. A record already in target is left untouched
// and ErrStatusUnchanged is returned.
func (sm *statusMachine) TransitionTx(ctx context.Context, tx bun.IDB, actor ActorRef, admin *Administrator, target AdministratorStatus, opts ...TransitionOption) (*Administrator, error) {
	if admin == nil {
		return nil, tagged(ErrInvalidTransition, map[string]any{
			"target": target,
			"reason": "administrator is nil",
		})
	}

	from, ok := sm.source(target)
	if !ok {
		return nil, tagged(ErrInvalidTransition, map[string]any{
			"from": admin.Status,
			"to":   target,
		})
	}

	admin.EnsureStatus()
	if admin.Status == target {
		return admin, tagged(ErrStatusUnchanged, map[string]any{
			"id":      admin.ID.String(),
			"current": admin.Status,
			"to":      target,
		})
	}

	options := sm.buildTransitionOptions(opts...)
	ctxData := TransitionContext{
		Actor:         actor,
		Administrator: admin,
		From:          from,
		To:            target,
		Meta:          options.cloneMetadata(),
	}

	if err := sm.runHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore); err != nil {
		return nil, err
	}

	var (
		updated *Administrator
		err     error
	)
	if tx != nil {
		updated, err = sm.store.UpdateStatusTx(ctx, tx, admin.ID, from, target)
	} else {
		updated, err = sm.store.UpdateStatus(ctx, admin.ID, from, target)
	}

	if updated != nil {
		admin.Status = updated.Status
		admin.UpdatedAt = updated.UpdatedAt
	}

	if err != nil {
		return admin, err
	}

	if err := sm.runHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter); err != nil {
		return nil, err
	}

	recordActivity(ctx, sm.activitySink, sm.logger, ActivityEvent{
		EventType:       ActivityEventAdministratorStatusChanged,
		Actor:           actor,
		AdministratorID: admin.ID.String(),
		FromStatus:      from,
		ToStatus:        target,
		Metadata:        sm.transitionMetadata(ctxData.Meta),
		OccurredAt:      sm.now(),
	})

	return admin, nil
}

func (sm *statusMachine) CurrentStatus(admin *Administrator) AdministratorStatus {
	if admin == nil {
		return ""
	}
	admin.EnsureStatus()
	return admin.Status
}

// source returns the only status that may move into target
func (sm *statusMachine) source(target AdministratorStatus) (AdministratorStatus, bool) {
	for from, to := range sm.transitions {
		if to == target {
			return from, true
		}
	}
	return "", false
}

func (sm *statusMachine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if sm.hookErrorHandler == nil {
				return err
			}
			return sm.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func (sm *statusMachine) buildTransitionOptions(opts ...TransitionOption) *transitionOptions {
	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func (sm *statusMachine) transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}
