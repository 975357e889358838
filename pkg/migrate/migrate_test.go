package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partnerz-backend/pkg/config"
	"github.com/angelmondragon/partnerz-backend/pkg/db"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestDialect(t *testing.T) {
	assert.Equal(t, goose.DialectSQLite3, Dialect(config.DBConfig{Driver: "sqlite"}))
	assert.Equal(t, goose.DialectPostgres, Dialect(config.DBConfig{Driver: "postgres"}))
	assert.Equal(t, goose.DialectPostgres, Dialect(config.DBConfig{}))
}

func TestUpCreatesSnapshotTable(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)

	results, err := Up(ctx, sqlDB, goose.DialectSQLite3)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.True(t, client.DB().Migrator().HasTable("directory_snapshots"))

	results, err = Up(ctx, sqlDB, goose.DialectSQLite3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_things.sql"), []byte("-- +goose Up\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Ledger Events!")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{14}_add_ledger_events\.sql$`, filepath.Base(path))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestValidateAnnotations(t *testing.T) {
	assert.NoError(t, validateAnnotations("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\n"))
	assert.Error(t, validateAnnotations("-- +goose Down\n-- +goose Up\n"))
	assert.Error(t, validateAnnotations("-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n"))
}
