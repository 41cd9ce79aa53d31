package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	expected := []string{
		"00001_create_users_table.sql",
		"00002_create_categories_table.sql",
		"00003_create_products_table.sql",
		"00004_create_orders_table.sql",
		"00005_create_order_items_table.sql",
		"00006_create_notifications_table.sql",
		"00007_create_updated_at_trigger.sql",
	}
	assert.ElementsMatch(t, expected, entries)

	// Every migration must be reversible
	for _, name := range entries {
		content, err := fs.ReadFile(FS, name)
		require.NoError(t, err)

		sql := string(content)
		assert.Contains(t, sql, "-- +goose Up", "migration %s", name)
		assert.Contains(t, sql, "-- +goose Down", "migration %s", name)
		assert.Contains(t, sql, "-- +goose StatementBegin", "migration %s", name)
		assert.Contains(t, sql, "-- +goose StatementEnd", "migration %s", name)
	}
}

func TestMigrationsCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"users":         "00001_create_users_table.sql",
		"categories":    "00002_create_categories_table.sql",
		"products":      "00003_create_products_table.sql",
		"orders":        "00004_create_orders_table.sql",
		"order_items":   "00005_create_order_items_table.sql",
		"notifications": "00006_create_notifications_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content, err := fs.ReadFile(FS, migrationFile)
		require.NoError(t, err)

		sql := string(content)
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+tableName, "migration %s", migrationFile)
		assert.Contains(t, sql, "DROP TABLE IF EXISTS "+tableName, "migration %s", migrationFile)
	}
}

func TestProductsTableGuardsStock(t *testing.T) {
	content, err := fs.ReadFile(FS, "00003_create_products_table.sql")
	require.NoError(t, err)

	sql := string(content)
	assert.Contains(t, sql, "CHECK (stock >= 0)")
	assert.Contains(t, sql, "CHECK (discount_price IS NULL OR discount_price < price)")
}
