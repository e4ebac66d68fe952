package postgres

import (
	"context"
	"io/fs"
	"testing"

	"github.com/phrazzld/wordeck-api/internal/platform/postgres/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_UnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "sideways", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	names, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.Len(t, names, 4)

	for _, name := range names {
		content, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", name)
		assert.Contains(t, string(content), "-- +goose Down", name)
	}
}
