package migration

import (
	"database/sql"
	"testing"

	"github.com/littlelemon/menu/internal/infrastructure/config"
	"github.com/littlelemon/menu/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	return sqlDB
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestMigrator_UpDownSQLite(t *testing.T) {
	db := openMemoryDB(t)

	m, err := New(db, config.DriverSQLite, zap.NewNop())
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up())
	assert.True(t, tableExists(t, db, "menu_items"))

	version, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// a second Up is a no-op
	require.NoError(t, m.Up())

	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, db, "menu_items"))

	require.NoError(t, m.Close())
	assert.NoError(t, db.Ping(), "closing the migrator must leave the pool open")
}

func TestMigrator_Steps(t *testing.T) {
	db := openMemoryDB(t)

	m, err := New(db, config.DriverSQLite, nil)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Steps(1))
	version, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestMigrator_GoToAndForce(t *testing.T) {
	db := openMemoryDB(t)

	m, err := New(db, config.DriverSQLite, nil)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.GoTo(1))
	require.NoError(t, m.GoTo(1))

	require.NoError(t, m.Force(1))
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestMigrator_MigratedSchemaRejectsNegativePrice(t *testing.T) {
	db := openMemoryDB(t)

	m, err := New(db, config.DriverSQLite, nil)
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Up())

	_, err = db.Exec("INSERT INTO menu_items (id, name, price) VALUES ('1', 'Soup', -1)")
	assert.Error(t, err)

	_, err = db.Exec("INSERT INTO menu_items (id, name, price) VALUES ('1', 'Soup', 3.5)")
	assert.NoError(t, err)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	db := openMemoryDB(t)

	_, err := New(db, "oracle", nil)
	assert.Error(t, err)
}
