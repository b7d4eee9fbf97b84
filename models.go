package admins

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AdministratorStatus is the account status
type AdministratorStatus = string

const (
	// StatusActivated accounts can sign in to the back-office
	StatusActivated AdministratorStatus = "Activated"
	// StatusDeactivated accounts are kept but locked out
	StatusDeactivated AdministratorStatus = "Deactivated"
)

// ResetPasswordSentinel is written to the password hash when an
// administrator password is reset. It is not a bcrypt hash so no
// password will ever match it.
const ResetPasswordSentinel = "Reset Password"

// Administrator is the back-office account model
type Administrator struct {
	bun.BaseModel `bun:"table:administrators,alias:adm"`
	ID            uuid.UUID           `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string              `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string              `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string              `bun:"password_hash,notnull" json:"-"`
	Role          AdministratorRole   `bun:"role,notnull" json:"role,omitempty"`
	Status        AdministratorStatus `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time          `bun:"created_at,nullzero" json:"created_at,omitempty"`
	UpdatedAt     *time.Time          `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// EnsureStatus sets the default status when none is present
func (a *Administrator) EnsureStatus() {
	if a == nil {
		return
	}
	if a.Status == "" {
		a.Status = StatusActivated
	}
}

// IsActivated reports if the account is activated
func (a *Administrator) IsActivated() bool {
	return a != nil && a.Status == StatusActivated
}

// IsDeactivated reports if the account is deactivated
func (a *Administrator) IsDeactivated() bool {
	return a != nil && a.Status == StatusDeactivated
}

// IsPasswordReset reports if the password was replaced by the reset marker
func (a *Administrator) IsPasswordReset() bool {
	return a != nil && a.PasswordHash == ResetPasswordSentinel
}

// ResetRequestedStatus is the status of a new reset request
const ResetRequestedStatus = "requested"

// PasswordReset records a reset request so the token issuance
// flow can pick it up.
type PasswordReset struct {
	bun.BaseModel   `bun:"table:administrator_password_resets,alias:apr"`
	ID              uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AdministratorID uuid.UUID      `bun:"administrator_id,notnull,type:uuid" json:"administrator_id,omitempty"`
	Administrator   *Administrator `bun:"rel:belongs-to,join:administrator_id=id" json:"administrator,omitempty"`
	Email           string         `bun:"email,notnull" json:"email,omitempty"`
	Status          string         `bun:"status,notnull" json:"status,omitempty"`
	RequestedBy     string         `bun:"requested_by" json:"requested_by,omitempty"`
	CreatedAt       *time.Time     `bun:"created_at,nullzero" json:"created_at,omitempty"`
}
