package admins

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	usernames map[string]uuid.UUID
	emails    map[string]uuid.UUID
	err       error
}

func (s *stubChecker) UsernameTaken(_ context.Context, username string, exclude uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	id, ok := s.usernames[username]
	return ok && id != exclude, nil
}

func (s *stubChecker) EmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	id, ok := s.emails[email]
	return ok && id != exclude, nil
}

func TestValidateAddAcceptsValidInput(t *testing.T) {
	v := NewValidator(&stubChecker{})

	in, res, err := v.ValidateAdd(context.Background(), AdministratorInput{
		Username: " bob1 ",
		Email:    "Bob@X.com",
		Password: "1234",
		Role:     "editor",
	})
	require.NoError(t, err)

	assert.False(t, res.HasError)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "bob1", in.Username)
	assert.Equal(t, "bob@x.com", in.Email)
	assert.Equal(t, map[string]string{
		"username": "bob1",
		"email":    "bob@x.com",
		"role":     "editor",
	}, res.ValidInput)
}

func TestValidateAddReportsEveryField(t *testing.T) {
	v := NewValidator(&stubChecker{})

	_, res, err := v.ValidateAdd(context.Background(), AdministratorInput{
		Username: "bob one",
		Email:    "not-an-email",
		Password: "123",
		Role:     "  ",
	})
	require.NoError(t, err)

	require.True(t, res.HasError)
	assert.Equal(t, []FieldError{
		{Field: "username", Message: msgUsernameShape},
		{Field: "email", Message: msgEmailShape},
		{Field: "password", Message: msgPasswordLength},
		{Field: "role", Message: msgRoleMissingAdd},
	}, res.Errors)
	assert.Empty(t, res.ValidInput)
}

func TestValidateAddRejectsTakenUsernameAndEmail(t *testing.T) {
	existing := uuid.New()
	v := NewValidator(&stubChecker{
		usernames: map[string]uuid.UUID{"bob1": existing},
		emails:    map[string]uuid.UUID{"bob@x.com": existing},
	})

	_, res, err := v.ValidateAdd(context.Background(), AdministratorInput{
		Username: "bob1",
		Email:    "BOB@x.com",
		Password: "1234",
		Role:     "editor",
	})
	require.NoError(t, err)

	require.True(t, res.HasError)
	errs := res.ErrorMap()
	assert.Equal(t, msgUsernameTaken, errs["username"])
	assert.Equal(t, msgEmailTaken, errs["email"])
	assert.Equal(t, "editor", res.ValidInput["role"])
}

func TestValidateUpdateExcludesOwnRecord(t *testing.T) {
	self := uuid.New()
	v := NewValidator(&stubChecker{
		usernames: map[string]uuid.UUID{"bob1": self},
		emails:    map[string]uuid.UUID{"bob@x.com": self},
	})

	_, res, err := v.ValidateUpdate(context.Background(), self, AdministratorInput{
		Username: "bob1",
		Email:    "bob@x.com",
		Role:     "editor",
	})
	require.NoError(t, err)
	assert.False(t, res.HasError)
}

func TestValidateUpdateRejectsOtherRecordsValues(t *testing.T) {
	other := uuid.New()
	v := NewValidator(&stubChecker{
		usernames: map[string]uuid.UUID{"alice": other},
		emails:    map[string]uuid.UUID{},
	})

	in, res, err := v.ValidateUpdate(context.Background(), uuid.New(), AdministratorInput{
		Username: "alice",
		Email:    "bob@x.com",
		Password: "ignored",
		Role:     "",
	})
	require.NoError(t, err)

	require.True(t, res.HasError)
	assert.Empty(t, in.Password)
	assert.Equal(t, []FieldError{
		{Field: "username", Message: msgUsernameTaken},
		{Field: "role", Message: msgRoleMissingEdit},
	}, res.Errors)
	assert.Equal(t, map[string]string{"email": "bob@x.com"}, res.ValidInput)
}

func TestValidateAddStoreFailureIsReturned(t *testing.T) {
	v := NewValidator(&stubChecker{err: errors.New("database is locked")})

	_, _, err := v.ValidateAdd(context.Background(), AdministratorInput{
		Username: "bob1",
		Email:    "bob@x.com",
		Password: "1234",
		Role:     "editor",
	})
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}
