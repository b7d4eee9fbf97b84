package admins

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Administrators is the record store for administrator accounts
type Administrators interface {
	UniquenessChecker

	ListAll(ctx context.Context) ([]*Administrator, error)
	ListAllTx(ctx context.Context, tx bun.IDB) ([]*Administrator, error)
	FindByUsername(ctx context.Context, username string) (*Administrator, error)
	FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Administrator, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Administrator, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Administrator, error)

	Insert(ctx context.Context, record *Administrator) (*Administrator, error)
	InsertTx(ctx context.Context, tx bun.IDB, record *Administrator) (*Administrator, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields AdministratorFields) (*Administrator, error)
	UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fields AdministratorFields) (*Administrator, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to AdministratorStatus) (*Administrator, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, from, to AdministratorStatus) (*Administrator, error)
	MarkPasswordReset(ctx context.Context, id uuid.UUID) (*Administrator, error)
	MarkPasswordResetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Administrator, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (*Administrator, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Administrator, error)
}

// AdministratorFields are the columns an update may change
type AdministratorFields struct {
	Username string
	Email    string
	Role     string
}

type administrators struct {
	repository.Repository[*Administrator]
	db  *bun.DB
	now func() time.Time
}

var _ Administrators = (*administrators)(nil)

// AdministratorsOption configures the repository
type AdministratorsOption func(*administrators)

// WithAdministratorsClock injects a custom clock (useful for tests).
func WithAdministratorsClock(clock func() time.Time) AdministratorsOption {
	return func(a *administrators) {
		if clock != nil {
			a.now = clock
		}
	}
}

// NewAdministratorsRepository returns the bun backed store
func NewAdministratorsRepository(db *bun.DB, opts ...AdministratorsOption) Administrators {
	repo := repository.NewRepository[*Administrator](db, repository.ModelHandlers[*Administrator]{
		NewRecord: func() *Administrator { return &Administrator{} },
		GetID: func(a *Administrator) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Administrator, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	r := &administrators{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

func (a *administrators) ListAll(ctx context.Context) ([]*Administrator, error) {
	return a.ListAllTx(ctx, a.db)
}

func (a *administrators) ListAllTx(ctx context.Context, tx bun.IDB) ([]*Administrator, error) {
	records := []*Administrator{}
	err := tx.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at ASC").
		OrderExpr("?TableAlias.username ASC").
		Scan(ctx)
	if err != nil {
		return nil, classifyStoreError(err, nil)
	}
	return records, nil
}

func (a *administrators) FindByUsername(ctx context.Context, username string) (*Administrator, error) {
	return a.FindByUsernameTx(ctx, a.db, username)
}

func (a *administrators) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Administrator, error) {
	return a.findOne(ctx, tx, "username", strings.TrimSpace(username))
}

func (a *administrators) FindByID(ctx context.Context, id uuid.UUID) (*Administrator, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *administrators) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Administrator, error) {
	return a.findOne(ctx, tx, "id", id.String())
}

func (a *administrators) findOne(ctx context.Context, tx bun.IDB, column, value string) (*Administrator, error) {
	metadata := map[string]any{column: value}
	if value == "" {
		return nil, tagged(ErrAdministratorNotFound, metadata)
	}

	record := &Administrator{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, classifyStoreError(err, metadata)
	}
	return record, nil
}

func (a *administrators) UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error) {
	return a.taken(ctx, "username", username, exclude)
}

func (a *administrators) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return a.taken(ctx, "email", email, exclude)
}

func (a *administrators) taken(ctx context.Context, column, value string, exclude uuid.UUID) (bool, error) {
	q := a.db.NewSelect().
		Model((*Administrator)(nil)).
		Where("?TableAlias.? = ?", bun.Ident(column), value)

	if exclude != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", exclude.String())
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, classifyStoreError(err, map[string]any{column: value})
	}
	return exists, nil
}

func (a *administrators) Insert(ctx context.Context, record *Administrator) (*Administrator, error) {
	return a.InsertTx(ctx, a.db, record)
}

// InsertTx relies on the unique indexes to reject duplicates, a
// violation comes back as ErrDuplicateUsername or ErrDuplicateEmail,
// any other unique key as ErrAdministratorConflict.
func (a *administrators) InsertTx(ctx context.Context, tx bun.IDB, record *Administrator) (*Administrator, error) {
	prepareAdministratorDefaults(record, a.now())

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, classifyStoreError(err, map[string]any{
			"username": record.Username,
			"email":    record.Email,
		})
	}
	return created, nil
}

func (a *administrators) UpdateFields(ctx context.Context, id uuid.UUID, fields AdministratorFields) (*Administrator, error) {
	return a.UpdateFieldsTx(ctx, a.db, id, fields)
}

func (a *administrators) UpdateFieldsTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fields AdministratorFields) (*Administrator, error) {
	now := a.now()
	record := &Administrator{
		ID:        id,
		Username:  fields.Username,
		Email:     fields.Email,
		Role:      fields.Role,
		UpdatedAt: &now,
	}

	res, err := tx.NewUpdate().
		Model(record).
		Column("username", "email", "role", "updated_at").
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	metadata := map[string]any{"id": id.String()}
	if err != nil {
		return nil, classifyStoreError(err, metadata)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, tagged(ErrAdministratorNotFound, metadata)
	}

	return a.FindByIDTx(ctx, tx, id)
}

func (a *administrators) UpdateStatus(ctx context.Context, id uuid.UUID, from, to AdministratorStatus) (*Administrator, error) {
	return a.UpdateStatusTx(ctx, a.db, id, from, to)
}

// UpdateStatusTx only writes when the stored status equals from. When
// nothing changed the record is read back to tell a missing record
// apart from one already in the target status.
func (a *administrators) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, from, to AdministratorStatus) (*Administrator, error) {
	metadata := map[string]any{"id": id.String(), "from": from, "to": to}

	res, err := tx.NewUpdate().
		Model((*Administrator)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", a.now()).
		Where("id = ?", id.String()).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return nil, classifyStoreError(err, metadata)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, classifyStoreError(err, metadata)
	}

	current, err := a.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return current, tagged(ErrStatusUnchanged, map[string]any{
			"id":      id.String(),
			"current": current.Status,
			"to":      to,
		})
	}

	return current, nil
}

func (a *administrators) MarkPasswordReset(ctx context.Context, id uuid.UUID) (*Administrator, error) {
	return a.MarkPasswordResetTx(ctx, a.db, id)
}

func (a *administrators) MarkPasswordResetTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Administrator, error) {
	metadata := map[string]any{"id": id.String()}

	res, err := tx.NewUpdate().
		Model((*Administrator)(nil)).
		Set("password_hash = ?", ResetPasswordSentinel).
		Set("updated_at = ?", a.now()).
		Where("id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return nil, classifyStoreError(err, metadata)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, tagged(ErrAdministratorNotFound, metadata)
	}

	return a.FindByIDTx(ctx, tx, id)
}

func (a *administrators) DeleteByID(ctx context.Context, id uuid.UUID) (*Administrator, error) {
	return a.DeleteByIDTx(ctx, a.db, id)
}

func (a *administrators) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Administrator, error) {
	record, err := a.FindByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	res, err := tx.NewDelete().
		Model((*Administrator)(nil)).
		Where("id = ?", id.String()).
		Exec(ctx)
	metadata := map[string]any{"id": id.String()}
	if err != nil {
		return nil, classifyStoreError(err, metadata)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, tagged(ErrAdministratorNotFound, metadata)
	}

	return record, nil
}

func prepareAdministratorDefaults(record *Administrator, now time.Time) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}

	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}
