package admins

import (
	"context"
	"database/sql"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordHashCost = bcrypt.MinCost
}

// testDSN enables foreign keys for both sqlite drivers sqliteshim can pick
const testDSN = "file::memory:?_fk=1&_pragma=foreign_keys(1)"

// newTestDB opens an in-memory sqlite database with the package
// migrations applied.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, testDSN)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	migrations := GetMigrationsFS()
	files, err := fs.Glob(migrations, "data/sql/migrations/sqlite/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	for _, name := range files {
		content, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)

		for _, stmt := range strings.Split(string(content), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			_, err := db.ExecContext(context.Background(), stmt)
			require.NoError(t, err, "migration %s", name)
		}
	}

	return db
}

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		return ts
	}
}

func newTestRepo(t *testing.T) RepositoryManager {
	t.Helper()
	return NewRepositoryManager(newTestDB(t))
}

func seedAdministrator(t *testing.T, repo RepositoryManager, username, email string, status AdministratorStatus) *Administrator {
	t.Helper()

	hash, err := HashPassword("secret")
	require.NoError(t, err)

	admin, err := repo.Administrators().Insert(context.Background(), &Administrator{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleEditor,
		Status:       status,
	})
	require.NoError(t, err)
	return admin
}

func countAdministrators(t *testing.T, repo RepositoryManager) int {
	t.Helper()
	records, err := repo.Administrators().ListAll(context.Background())
	require.NoError(t, err)
	return len(records)
}

type recordingSink struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) Events() []ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ActivityEvent(nil), r.events...)
}

type recordingNotifier struct {
	resets []*PasswordReset
	err    error
}

func (r *recordingNotifier) NotifyPasswordReset(_ context.Context, reset *PasswordReset) error {
	r.resets = append(r.resets, reset)
	return r.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
