// Package integration runs the analytics repositories against real PostgreSQL
// and MongoDB instances started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefront/analytics/internal/infrastructure/migration"
	"github.com/storefront/analytics/internal/infrastructure/persistence/document"
	"github.com/storefront/analytics/migrations"
)

var (
	// Shared containers for all tests in the package
	sharedMu       sync.Mutex
	sharedPostgres testcontainers.Container
	sharedDSN      string
	sharedMongo    testcontainers.Container
	sharedMongoURI string
)

// TestDB is a migrated PostgreSQL connection on the shared container
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewSharedTestDB returns a connection to the shared PostgreSQL container,
// starting and migrating it on first use. Tables are truncated before the
// connection is returned.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx := context.Background()

	if sharedPostgres == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("analytics_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("admin123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start shared PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		sharedPostgres = container
		sharedDSN = dsn

		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		sqlDB.Close()
	}

	db, sqlDB := connectToDatabase(t, sharedDSN)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: sharedDSN, t: t}
	tdb.CleanTables()

	t.Cleanup(func() {
		if tdb.SqlDB != nil {
			tdb.SqlDB.Close()
		}
	})

	return tdb
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	if len(tables) == 0 {
		return
	}

	err = tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))).Error
	require.NoError(tdb.t, err, "Failed to truncate tables")
}

// connectToDatabase establishes a GORM connection to the database
func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// runMigrations applies the embedded schema migrations
func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	m, err := migration.NewPostgres(sqlDB, migrations.Postgres(), zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// NewTestMongo returns a fresh database on the shared MongoDB container with
// the index migrations applied. The database is dropped on cleanup.
func NewTestMongo(t *testing.T) *mongo.Database {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx := context.Background()

	if sharedMongo == nil {
		container, err := tcmongo.Run(ctx, "mongo:7")
		require.NoError(t, err, "Failed to start shared MongoDB container")

		uri, err := container.ConnectionString(ctx)
		require.NoError(t, err, "Failed to get connection string")

		sharedMongo = container
		sharedMongoURI = uri
	}

	name := databaseName(t)
	client, err := document.Connect(ctx, document.Config{
		URI:            sharedMongoURI,
		Database:       name,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err, "Failed to connect to MongoDB")

	m, err := migration.NewMongo(client.Mongo(), name, migrations.Mongo(), zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run index migrations")

	t.Cleanup(func() {
		cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database().Drop(cctx)
		_ = client.Close(cctx)
	})

	return client.Database()
}

func databaseName(t *testing.T) string {
	r := strings.NewReplacer("/", "_", " ", "_", ".", "_")
	name := "analytics_" + r.Replace(t.Name())
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}

// CleanupSharedContainers terminates the shared containers
func CleanupSharedContainers() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	ctx := context.Background()
	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
		sharedPostgres = nil
		sharedDSN = ""
	}
	if sharedMongo != nil {
		_ = sharedMongo.Terminate(ctx)
		sharedMongo = nil
		sharedMongoURI = ""
	}
}
