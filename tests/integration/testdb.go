// Package integration runs the menu store against real services started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/littlelemon/menu/internal/infrastructure/config"
	"github.com/littlelemon/menu/internal/infrastructure/migration"
	"github.com/littlelemon/menu/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
)

var (
	// Shared container for all tests in the package
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
)

// TestDB is a migrated postgres database
type TestDB struct {
	*persistence.Database
	t *testing.T
}

// requireDocker skips t in short mode or when no container runtime is reachable
func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// NewTestDB connects to the shared postgres container, migrates it and
// truncates menu_items so each test starts empty.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	requireDocker(t)

	ctx := context.Background()
	container := sharedPostgres(t, ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err, "Failed to get container host")
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "Failed to get mapped port")

	cfg := &config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "menu_test",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}

	// Enable SQL logging if TEST_DB_DEBUG is set
	var db *persistence.Database
	if os.Getenv("TEST_DB_DEBUG") != "" {
		db, err = persistence.NewDatabaseWithLogger(cfg, gormlogger.Default.LogMode(gormlogger.Info))
	} else {
		db, err = persistence.NewDatabase(cfg)
	}
	require.NoError(t, err, "Failed to connect to database")

	tdb := &TestDB{Database: db, t: t}
	t.Cleanup(func() {
		if err := tdb.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})

	tdb.migrate()
	tdb.CleanTables()
	return tdb
}

// CleanTables empties every menu table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE menu_items").Error, "Failed to truncate menu_items")
}

func (tdb *TestDB) migrate() {
	tdb.t.Helper()

	sqlDB, err := tdb.DB.DB()
	require.NoError(tdb.t, err, "Failed to get underlying SQL DB")

	m, err := migration.New(sqlDB, config.DriverPostgres, zap.NewNop())
	require.NoError(tdb.t, err, "Failed to create migrator")
	defer func() { _ = m.Close() }()

	require.NoError(tdb.t, m.Up(), "Failed to run migrations")
}

func sharedPostgres(t *testing.T, ctx context.Context) *tcpostgres.PostgresContainer {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		return sharedContainer
	}

	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase("menu_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	sharedContainer = container
	return container
}

// StartRedis runs a throwaway redis container and returns its host and port
func StartRedis(t *testing.T) (string, int) {
	t.Helper()
	requireDocker(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err, "Failed to get container host")
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err, "Failed to get mapped port")
	return host, port.Int()
}

// CleanupSharedContainer terminates the shared postgres container
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sharedContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
		}
		sharedContainer = nil
	}
}
