package admins

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdministratorsInsertAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryManager(newTestDB(t), WithAdministratorsClock(fixedClock()))

	created, err := repo.Administrators().Insert(ctx, &Administrator{
		Username:     "bob1",
		Email:        "bob@x.com",
		PasswordHash: "hash",
		Role:         RoleEditor,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, StatusActivated, created.Status)
	require.NotNil(t, created.CreatedAt)
	assert.True(t, created.CreatedAt.Equal(fixedClock()()))

	found, err := repo.Administrators().FindByUsername(ctx, "bob1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "bob@x.com", found.Email)
}

func TestAdministratorsUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)

	_, err := repo.Administrators().Insert(ctx, &Administrator{
		Username:     "bob1",
		Email:        "other@x.com",
		PasswordHash: "hash",
		Role:         RoleEditor,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.Contains(t, err.Error(), "username")

	_, err = repo.Administrators().Insert(ctx, &Administrator{
		Username:     "bob2",
		Email:        "bob@x.com",
		PasswordHash: "hash",
		Role:         RoleEditor,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.Contains(t, err.Error(), "email")

	assert.Equal(t, 1, countAdministrators(t, repo))
}

func TestAdministratorsFindMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Administrators().FindByUsername(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsStoreUnavailable(err))

	_, err = repo.Administrators().FindByUsername(ctx, "   ")
	assert.True(t, IsNotFound(err))

	_, err = repo.Administrators().FindByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestAdministratorsTakenExcludesRecord(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)

	taken, err := repo.Administrators().UsernameTaken(ctx, "bob1", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.Administrators().UsernameTaken(ctx, "bob1", bob.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.Administrators().EmailTaken(ctx, "bob@x.com", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.Administrators().EmailTaken(ctx, "alice@x.com", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestAdministratorsUpdateFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusDeactivated)

	updated, err := repo.Administrators().UpdateFields(ctx, bob.ID, AdministratorFields{
		Username: "bob2",
		Email:    "bob@x.com",
		Role:     RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, bob.ID, updated.ID)
	assert.Equal(t, "bob2", updated.Username)
	assert.Equal(t, RoleAdmin, updated.Role)
	assert.Equal(t, StatusDeactivated, updated.Status)
	assert.Equal(t, bob.PasswordHash, updated.PasswordHash)

	_, err = repo.Administrators().UpdateFields(ctx, uuid.New(), AdministratorFields{
		Username: "ghost",
		Email:    "ghost@x.com",
		Role:     RoleAdmin,
	})
	assert.True(t, IsNotFound(err))
}

func TestAdministratorsUpdateFieldsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seedAdministrator(t, repo, "alice", "alice@x.com", StatusActivated)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)

	_, err := repo.Administrators().UpdateFields(ctx, bob.ID, AdministratorFields{
		Username: "bob1",
		Email:    "alice@x.com",
		Role:     RoleEditor,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
}

func TestAdministratorsUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)

	current, err := repo.Administrators().UpdateStatus(ctx, bob.ID, StatusDeactivated, StatusActivated)
	require.Error(t, err)
	assert.ErrorContains(t, err, "already has the requested status")
	require.NotNil(t, current)
	assert.Equal(t, StatusActivated, current.Status)

	updated, err := repo.Administrators().UpdateStatus(ctx, bob.ID, StatusActivated, StatusDeactivated)
	require.NoError(t, err)
	assert.Equal(t, StatusDeactivated, updated.Status)

	_, err = repo.Administrators().UpdateStatus(ctx, uuid.New(), StatusActivated, StatusDeactivated)
	assert.True(t, IsNotFound(err))
}

func TestAdministratorsMarkPasswordReset(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)

	updated, err := repo.Administrators().MarkPasswordReset(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ResetPasswordSentinel, updated.PasswordHash)
	assert.True(t, updated.IsPasswordReset())

	_, err = repo.Administrators().MarkPasswordReset(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestAdministratorsDeleteByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)
	seedAdministrator(t, repo, "alice", "alice@x.com", StatusActivated)

	_, err := repo.Administrators().DeleteByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 2, countAdministrators(t, repo))

	deleted, err := repo.Administrators().DeleteByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob1", deleted.Username)
	assert.Equal(t, 1, countAdministrators(t, repo))
}

func TestAdministratorsInsertPrimaryKeyConflict(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)

	_, err := repo.Administrators().Insert(ctx, &Administrator{
		ID:           bob.ID,
		Username:     "carol",
		Email:        "carol@x.com",
		PasswordHash: "hash",
		Role:         RoleEditor,
		Status:       StatusActivated,
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.False(t, IsStoreUnavailable(err))
	assert.Equal(t, 1, countAdministrators(t, repo))
}

func TestAdministratorsDeleteCascadesPasswordResets(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepositoryManager(db)

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	require.Equal(t, 1, fk)

	bob := seedAdministrator(t, repo, "bob1", "bob@x.com", StatusActivated)
	_, err := db.NewInsert().Model(&PasswordReset{
		ID:              uuid.New(),
		AdministratorID: bob.ID,
		Email:           bob.Email,
		Status:          ResetRequestedStatus,
	}).Exec(ctx)
	require.NoError(t, err)

	_, err = repo.Administrators().DeleteByID(ctx, bob.ID)
	require.NoError(t, err)

	resets, err := db.NewSelect().Model((*PasswordReset)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, resets)
}

func TestAdministratorsListAllOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepositoryManager(newTestDB(t), WithAdministratorsClock(fixedClock()))
	seedAdministrator(t, repo, "carol", "carol@x.com", StatusActivated)
	seedAdministrator(t, repo, "alice", "alice@x.com", StatusDeactivated)

	records, err := repo.Administrators().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].Username)
	assert.Equal(t, "carol", records[1].Username)
}

func TestRepositoryManagerValidate(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Validate())
	assert.NotPanics(t, repo.MustValidate)

	empty := mngr{}
	assert.Error(t, empty.Validate())
}

func TestRepositoryManagerRunInTxCancelled(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.RunInTx(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
