package admins

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// UniquenessChecker is the store lookup used by the uniqueness rules.
// exclude is the id of the record being edited, uuid.Nil on create.
type UniquenessChecker interface {
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}

// FieldError is a single field level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of running the rule set on a request
type ValidationResult struct {
	HasError   bool              `json:"has_error"`
	Errors     []FieldError      `json:"errors"`
	ValidInput map[string]string `json:"valid_input"`
}

// ErrorMap returns the messages keyed by field, handy for templates
func (r ValidationResult) ErrorMap() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = e.Message
	}
	return out
}

const (
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldPassword = "password"
	fieldRole     = "role"
)

const (
	msgUsernameShape   = "Only letters and numbers are allowed."
	msgUsernameTaken   = "Username is already in use."
	msgEmailShape      = "Email is not valid."
	msgEmailTaken      = "Email is already in use."
	msgPasswordLength  = "Password must be at least 4 characters."
	msgRoleMissingAdd  = "Assign a role for account."
	msgRoleMissingEdit = "Must assign a role for the account."
)

// MinPasswordLength is the shortest password accepted on add
const MinPasswordLength = 4

// Validator runs the add and update rule sets
type Validator struct {
	checker UniquenessChecker
}

// NewValidator returns a Validator backed by the given store lookup
func NewValidator(checker UniquenessChecker) *Validator {
	return &Validator{checker: checker}
}

// ValidateAdd sanitizes and validates a creation request
func (v *Validator) ValidateAdd(ctx context.Context, raw AdministratorInput) (AdministratorInput, ValidationResult, error) {
	in := raw.Sanitize()

	err := validation.ValidateStruct(&in,
		validation.Field(
			&in.Username,
			validation.Required.Error(msgUsernameShape),
			is.Alphanumeric.Error(msgUsernameShape),
			validation.By(v.uniqueUsername(ctx, uuid.Nil)),
		),
		validation.Field(
			&in.Email,
			validation.Required.Error(msgEmailShape),
			is.Email.Error(msgEmailShape),
			validation.By(v.uniqueEmail(ctx, uuid.Nil)),
		),
		validation.Field(
			&in.Password,
			validation.Required.Error(msgPasswordLength),
			validation.Length(MinPasswordLength, 0).Error(msgPasswordLength),
		),
		validation.Field(
			&in.Role,
			validation.Required.Error(msgRoleMissingAdd),
		),
	)

	res, err := buildResult(in, err, []string{fieldUsername, fieldEmail, fieldPassword, fieldRole})
	return in, res, err
}

// ValidateUpdate sanitizes and validates an edit request for the record
// identified by id. The record itself never collides with its own
// username or email.
func (v *Validator) ValidateUpdate(ctx context.Context, id uuid.UUID, raw AdministratorInput) (AdministratorInput, ValidationResult, error) {
	in := raw.Sanitize()
	in.Password = ""

	err := validation.ValidateStruct(&in,
		validation.Field(
			&in.Username,
			validation.Required.Error(msgUsernameShape),
			is.Alphanumeric.Error(msgUsernameShape),
			validation.By(v.uniqueUsername(ctx, id)),
		),
		validation.Field(
			&in.Email,
			validation.Required.Error(msgEmailShape),
			is.Email.Error(msgEmailShape),
			validation.By(v.uniqueEmail(ctx, id)),
		),
		validation.Field(
			&in.Role,
			validation.Required.Error(msgRoleMissingEdit),
		),
	)

	res, err := buildResult(in, err, []string{fieldUsername, fieldEmail, fieldRole})
	return in, res, err
}

func (v *Validator) uniqueUsername(ctx context.Context, exclude uuid.UUID) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" || v.checker == nil {
			return nil
		}
		taken, err := v.checker.UsernameTaken(ctx, s, exclude)
		if err != nil {
			return validation.NewInternalError(err)
		}
		if taken {
			return errors.New(msgUsernameTaken)
		}
		return nil
	}
}

func (v *Validator) uniqueEmail(ctx context.Context, exclude uuid.UUID) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" || v.checker == nil {
			return nil
		}
		taken, err := v.checker.EmailTaken(ctx, s, exclude)
		if err != nil {
			return validation.NewInternalError(err)
		}
		if taken {
			return errors.New(msgEmailTaken)
		}
		return nil
	}
}

func buildResult(in AdministratorInput, err error, order []string) (ValidationResult, error) {
	res := ValidationResult{
		Errors:     []FieldError{},
		ValidInput: map[string]string{},
	}

	var fieldErrs validation.Errors
	if err != nil {
		if ie, ok := err.(validation.InternalError); ok && ie.InternalError() != nil {
			return res, classifyStoreError(ie.InternalError(), nil)
		}
		if !errors.As(err, &fieldErrs) {
			return res, err
		}
	}

	values := map[string]string{
		fieldUsername: in.Username,
		fieldEmail:    in.Email,
		fieldPassword: in.Password,
		fieldRole:     in.Role,
	}

	for _, field := range order {
		if fe, ok := fieldErrs[field]; ok && fe != nil {
			res.Errors = append(res.Errors, FieldError{Field: field, Message: fe.Error()})
			continue
		}
		if field == fieldPassword {
			continue
		}
		res.ValidInput[field] = values[field]
	}

	res.HasError = len(res.Errors) > 0
	return res, nil
}
