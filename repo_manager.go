package admins

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes the administrator stores
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Administrators() Administrators
	PasswordResets() repository.Repository[*PasswordReset]
}

// NewPasswordResetsRepository returns the store for reset requests
func NewPasswordResetsRepository(db *bun.DB) repository.Repository[*PasswordReset] {
	handlers := repository.ModelHandlers[*PasswordReset]{
		NewRecord: func() *PasswordReset {
			return &PasswordReset{}
		},
		GetID: func(record *PasswordReset) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordReset, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db             *bun.DB
	administrators Administrators
	passwordResets repository.Repository[*PasswordReset]
}

// NewRepositoryManager builds all stores on top of db
func NewRepositoryManager(db *bun.DB, opts ...AdministratorsOption) RepositoryManager {
	return &mngr{
		db:             db,
		administrators: NewAdministratorsRepository(db, opts...),
		passwordResets: NewPasswordResetsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("database connection should be initialized")
	}

	if m.administrators == nil {
		return errors.New("repository administrators should be initialized")
	}

	if m.passwordResets == nil {
		return errors.New("repository passwordResets should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Administrators() Administrators {
	return m.administrators
}

func (m mngr) PasswordResets() repository.Repository[*PasswordReset] {
	return m.passwordResets
}
