package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/analytics/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add orders index", "add_orders_index"},
		{"Add-Orders-Index", "add_orders_index"},
		{"ADD_ORDERS_INDEX", "add_orders_index"},
		{"add__orders__index", "add_orders_index"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_SQL(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add orders index", "Index orders by vendor", FormatSQL)
	require.NoError(t, err)
	assert.Len(t, mf.Version, 14)

	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))
	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add orders index")
	assert.Contains(t, string(upContent), "Index orders by vendor")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
}

func TestCreateMigration_JSON(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "index vendors", "", FormatJSON)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.json"))

	content, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(content))
}

func TestCreateMigration_UnknownFormat(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "x", "", Format("yaml"))
	assert.Error(t, err)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "test migration", FormatSQL)
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"000002_add_indexes.up.json",
		"000002_add_indexes.down.json",
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"README.md",
		".gitkeep",
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	list, err := ListMigrations(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init_schema", "000002_add_indexes"}, list)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListMigrations_Embedded(t *testing.T) {
	pg, err := ListMigrations(migrations.Postgres())
	require.NoError(t, err)
	assert.Contains(t, pg, "000001_create_analytics_schema")

	mongo, err := ListMigrations(migrations.Mongo())
	require.NoError(t, err)
	assert.Contains(t, mongo, "000001_create_analytics_indexes")
}
