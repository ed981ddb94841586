package admin

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/custdb/internal/server/config"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "hashed_password", "is_verified", "created_at", "updated_at"}

// stubDB routes openDB to a sqlmock connection and records the DSN used.
func stubDB(t *testing.T) (sqlmock.Sqlmock, *string) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	var dsn string
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(ctx context.Context, d string) (*sql.DB, error) {
		dsn = d
		return db, nil
	}
	return mock, &dsn
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "error"

	var out bytes.Buffer
	cmd := NewRootCommand(cfg, &out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type migratingRM struct {
	repomanager.RepositoryManager
	calls int
	err   error
}

func (m *migratingRM) RunMigrations(context.Context, *sql.DB) error {
	m.calls++
	return m.err
}

func TestMigrate_UsesDSNFlag(t *testing.T) {
	mock, dsn := stubDB(t)
	mock.ExpectClose()

	rm := &migratingRM{RepositoryManager: repomanager.NewPostgresRepositoryManager()}
	orig := newRepoManager
	t.Cleanup(func() { newRepoManager = orig })
	newRepoManager = func() repomanager.RepositoryManager { return rm }

	out, err := run(t, "migrate", "--dsn", "postgres://other/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres://other/db", *dsn)
	assert.Equal(t, 1, rm.calls)
	assert.Contains(t, out, "migrations applied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectClose()

	rm := &migratingRM{RepositoryManager: repomanager.NewPostgresRepositoryManager(), err: errors.New("dirty")}
	orig := newRepoManager
	t.Cleanup(func() { newRepoManager = orig })
	newRepoManager = func() repomanager.RepositoryManager { return rm }

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "dirty")
}

func TestOpenDBError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("refused") }

	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "refused")
}

func TestUserCreate(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ann@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_verified", "created_at"}).AddRow(int64(12), false, time.Now()))
	mock.ExpectClose()

	var wiped []byte
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		wiped = []byte("s3cret")
		return wiped, nil
	}

	out, err := run(t, "user", "create", "--email", "Ann@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Enter password: ")
	assert.Contains(t, out, "created user id=12 email=ann@example.com")
	assert.Equal(t, make([]byte, 6), wiped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_RequiresEmail(t *testing.T) {
	_, err := run(t, "user", "create")
	assert.ErrorContains(t, err, "email")
}

func TestUserVerify(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectQuery("SELECT id, email, hashed_password").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "a@b.io", "h", false, time.Now(), nil))
	mock.ExpectExec("UPDATE users SET is_verified").WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	out, err := run(t, "user", "verify", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "user 3 verified")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserVerify_AlreadyVerified(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectQuery("SELECT id, email, hashed_password").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "a@b.io", "h", true, time.Now(), nil))
	mock.ExpectClose()

	out, err := run(t, "user", "verify", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "already verified")
}

func TestUserVerify_BadID(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectClose()

	_, err := run(t, "user", "verify", "abc")
	assert.ErrorContains(t, err, `invalid user id "abc"`)
}

func TestUserRevokeTokens(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectQuery("SELECT id, email, hashed_password").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(4), "a@b.io", "h", true, time.Now(), nil))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectClose()

	out, err := run(t, "user", "revoke-tokens", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "revoked 2 refresh token(s) of user 4")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokensPurge(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at").WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectClose()

	out, err := run(t, "tokens", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 5 expired refresh token(s)")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomersExport_ToFile(t *testing.T) {
	mock, _ := stubDB(t)
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	mock.ExpectQuery("SELECT id, name, email").WithArgs("%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "company", "position", "address", "notes", "status", "created_at", "updated_at"}).
			AddRow(int64(1), "Ann", "ann@acme.io", nil, "Acme", nil, nil, nil, "active", created, nil))
	mock.ExpectClose()

	path := filepath.Join(t.TempDir(), "out.csv")
	out, err := run(t, "customers", "export", "--search", "acme", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported to "+path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Phone,Company,Position,Status,Created At\nAnn,ann@acme.io,,Acme,,active,2024-02-03\n", string(b))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomersExport_Stdout(t *testing.T) {
	mock, _ := stubDB(t)
	mock.ExpectQuery("SELECT id, name, email").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "company", "position", "address", "notes", "status", "created_at", "updated_at"}))
	mock.ExpectClose()

	out, err := run(t, "customers", "export")
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Phone,Company,Position,Status,Created At\n", out)
}
