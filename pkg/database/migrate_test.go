package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gooseFunc = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

func stubGoose(t *testing.T, err error) *[]string {
	t.Helper()
	up, down, status := gooseUp, gooseDown, gooseStatus
	t.Cleanup(func() { gooseUp, gooseDown, gooseStatus = up, down, status })

	var calls []string
	record := func(name string) gooseFunc {
		return func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
			calls = append(calls, name+":"+dir)
			return err
		}
	}
	gooseUp, gooseDown, gooseStatus = record("up"), record("down"), record("status")
	return &calls
}

func TestMigrateRollbackStatus_UseEmbeddedDir(t *testing.T) {
	calls := stubGoose(t, nil)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, nil))
	require.NoError(t, Rollback(ctx, nil))
	require.NoError(t, Status(ctx, nil))
	assert.Equal(t, []string{"up:migrations", "down:migrations", "status:migrations"}, *calls)
}

func TestMigrate_WrapsErrors(t *testing.T) {
	boom := errors.New("relation exists")
	stubGoose(t, boom)
	ctx := context.Background()

	err := Migrate(ctx, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "migrate up")

	err = Rollback(ctx, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "migrate down")

	err = Status(ctx, nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "migrate status")
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_users_sessions.sql",
		"migrations/00002_content.sql",
		"migrations/00003_audit_logs.sql",
	}, files)

	for _, f := range files {
		data, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		body := string(data)
		up := strings.Index(body, "-- +goose Up")
		down := strings.Index(body, "-- +goose Down")
		assert.GreaterOrEqual(t, up, 0, f)
		assert.Greater(t, down, up, f)
	}
}
