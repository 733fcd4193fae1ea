package migrations_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/agromap/agromap/database/migrations"
	"github.com/agromap/agromap/pkg/database"
	"github.com/agromap/agromap/pkg/migration"
)

func TestMigrateRollbackStatus(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer database.Close(db)

	var out bytes.Buffer
	runner := migration.New(db, &out)

	ran, err := runner.Run()
	require.NoError(t, err)
	assert.Equal(t, 6, ran)
	for _, table := range []string{"users", "markets", "schedules", "products", "product_bases", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	ran, err = runner.Run()
	require.NoError(t, err)
	assert.Zero(t, ran)
	assert.Contains(t, out.String(), "Nothing to migrate.")

	rows, err := runner.Status()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for _, row := range rows {
		assert.True(t, row.Ran, row.Name)
		assert.Equal(t, 1, row.Batch)
	}

	rolled, err := runner.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 6, rolled)
	assert.False(t, db.Migrator().HasTable("comments"))
	assert.False(t, db.Migrator().HasTable("users"))
}
