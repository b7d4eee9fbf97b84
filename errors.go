package admins

import (
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

const (
	textCodeNotFound          = "ADMINISTRATOR_NOT_FOUND"
	textCodeStoreUnavailable  = "STORE_UNAVAILABLE"
	textCodeDuplicateUsername = "DUPLICATE_USERNAME"
	textCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	textCodeConflict          = "ADMINISTRATOR_CONFLICT"
	textCodeStatusUnchanged   = "STATUS_UNCHANGED"
	textCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
)

// ErrAdministratorNotFound is returned when no record matches the lookup
var ErrAdministratorNotFound = goerrors.New("administrator not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrStoreUnavailable wraps any failure of the record store that is not
// a missing record or a constraint violation
var ErrStoreUnavailable = goerrors.New("administrator store unavailable", goerrors.CategoryInternal).
	WithTextCode(textCodeStoreUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrDuplicateUsername is returned when the username unique index rejects a write
var ErrDuplicateUsername = goerrors.New("username is already in use", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateUsername).
	WithCode(goerrors.CodeConflict)

// ErrDuplicateEmail is returned when the email unique index rejects a write
var ErrDuplicateEmail = goerrors.New("email is already in use", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrAdministratorConflict is returned when any other unique constraint
// rejects a write, e.g. a primary key derived from a reused email
var ErrAdministratorConflict = goerrors.New("administrator conflicts with an existing record", goerrors.CategoryConflict).
	WithTextCode(textCodeConflict).
	WithCode(goerrors.CodeConflict)

// ErrStatusUnchanged is returned when the record already has the target status
var ErrStatusUnchanged = goerrors.New("administrator already has the requested status", goerrors.CategoryValidation).
	WithTextCode(textCodeStatusUnchanged).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidTransition is returned for status values outside Activated/Deactivated
var ErrInvalidTransition = goerrors.New("invalid administrator status transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password can not be an empty string")

// IsNotFound checks if the error means the record does not exist
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, textCodeNotFound) {
		return true
	}
	return errors.Is(err, ErrAdministratorNotFound) ||
		errors.Is(err, sql.ErrNoRows) ||
		repository.IsRecordNotFound(err)
}

// IsStoreUnavailable checks if the error is an infrastructure failure
func IsStoreUnavailable(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeStoreUnavailable) || errors.Is(err, ErrStoreUnavailable)
}

// IsDuplicate checks if the error is a username or email collision
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return hasTextCode(err, textCodeDuplicateUsername) ||
		hasTextCode(err, textCodeDuplicateEmail) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail)
}

// IsConflict checks if the error is any unique constraint collision,
// duplicates included
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	return IsDuplicate(err) ||
		hasTextCode(err, textCodeConflict) ||
		errors.Is(err, ErrAdministratorConflict)
}

// IsUniqueViolation will check the driver error message. Both sqlite
// ("UNIQUE constraint failed: administrators.email") and postgres
// ("duplicate key value violates unique constraint") are covered.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// classifyStoreError maps a raw store error into one of the tagged
// errors so callers can pick a response without inspecting drivers.
func classifyStoreError(err error, metadata map[string]any) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode != "" && richErr.Category != goerrors.CategoryInternal {
		return err
	}

	if IsNotFound(err) {
		return tagged(ErrAdministratorNotFound, metadata)
	}

	if IsUniqueViolation(err) {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "username"):
			return tagged(ErrDuplicateUsername, metadata)
		case strings.Contains(msg, "email"):
			return tagged(ErrDuplicateEmail, metadata)
		default:
			return tagged(ErrAdministratorConflict, metadata)
		}
	}

	if IsStoreUnavailable(err) {
		return err
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "administrator store unavailable").
		WithTextCode(textCodeStoreUnavailable).
		WithCode(goerrors.CodeInternal).
		WithMetadata(metadata)
}

// tagged returns a copy of the sentinel carrying the given metadata
func tagged(base *goerrors.Error, metadata map[string]any) *goerrors.Error {
	clone := base.Clone()
	if len(metadata) > 0 {
		clone.WithMetadata(metadata)
	}
	return clone
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
