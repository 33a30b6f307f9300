package telemetry_test

import (
	"context"
	"testing"

	"github.com/littlelemon/menu/internal/infrastructure/config"
	"github.com/littlelemon/menu/internal/infrastructure/persistence"
	"github.com/littlelemon/menu/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func newMemoryDatabase(t *testing.T) *persistence.Database {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	db := newMemoryDatabase(t)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:  true,
		DBSystem: config.DriverSQLite,
	}, provider, zaptest.NewLogger(t))
	require.NoError(t, plugin.RegisterOtelGorm(db.DB))

	var n int
	require.NoError(t, db.DB.WithContext(context.Background()).Raw("SELECT ?", 1).Scan(&n).Error)
	assert.Equal(t, 1, n)

	assert.NotEmpty(t, recorder.Ended())
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := newMemoryDatabase(t)
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: false}, provider, nil)
	require.NoError(t, plugin.RegisterOtelGorm(db.DB))

	var n int
	require.NoError(t, db.DB.Raw("SELECT 1").Scan(&n).Error)
	assert.Empty(t, recorder.Ended())
}
