package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxeinwear/storefront-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "migration %s not found", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.Lint("migrations"))
}

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "create_catalog")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_key",
		"CREATE TABLE IF NOT EXISTS products",
		"stock_by_variant jsonb",
		"CREATE TABLE IF NOT EXISTS product_images",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestCommerceMigrationKeepsOrderHistoryIndependentOfCarts(t *testing.T) {
	content := readMigration(t, "create_carts_orders_payments")
	assert.Contains(t, content, "unit_price     numeric(12,2) NOT NULL")
	assert.Contains(t, content, "shipping_address jsonb NOT NULL")

	orderItems := content[strings.Index(content, "CREATE TABLE IF NOT EXISTS order_items"):]
	orderItems = orderItems[:strings.Index(orderItems, ");")]
	assert.NotContains(t, orderItems, "REFERENCES products (id) ON DELETE CASCADE",
		"order items must survive product changes")
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", migrate.Dialect("sqlite"))
	assert.Equal(t, "postgres", migrate.Dialect("postgres"))
	assert.Equal(t, "postgres", migrate.Dialect(""))
}

func TestScaffoldWritesLintableFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

	path, err := migrate.Scaffold(dir, "Add Product Tags!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260302103000_add_product_tags.sql"), path)
	require.NoError(t, migrate.Lint(dir))

	_, err = migrate.Scaffold(dir, "add product tags", now)
	assert.Error(t, err, "same stamp and slug must not overwrite")

	_, err = migrate.Scaffold(dir, "!!!", now)
	assert.Error(t, err)
}

func TestLintReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("001_bad.sql", "-- +goose Up\n-- +goose Down\n")
	write("20260301090000_one.sql", "-- +goose Up\n")
	write("20260301090000_two.sql", "-- +goose Up\n-- +goose Down\n")
	write("notes.txt", "ignored")

	err := migrate.Lint(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_bad.sql")
	assert.Contains(t, err.Error(), "missing \"-- +goose Down\"")
	assert.Contains(t, err.Error(), "version already used")
}
