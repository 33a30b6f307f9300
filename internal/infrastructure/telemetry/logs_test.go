package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/littlelemon/menu/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// recordingExporter keeps the body of every exported record
type recordingExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) Bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.Nil(t, lp.Provider())
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestBridgeLogger(t *testing.T) {
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	bridged := telemetry.BridgeLogger(base, telemetry.ZapBridgeConfig{
		ServiceName: "little-lemon-menu",
		Provider:    provider,
		Level:       zapcore.InfoLevel,
	})

	bridged.Info("menu seeded", zap.String("outcome", "remote"))
	bridged.Debug("store already seeded")

	assert.Equal(t, 2, logs.Len(), "the base core keeps every entry")
	assert.Equal(t, []string{"menu seeded"}, exporter.Bodies(), "only entries at the bridge level reach OTEL")
}

func TestBridgeLogger_NoProvider(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, telemetry.BridgeLogger(base, telemetry.ZapBridgeConfig{}))
}

func TestNewZapOTELCore_NoProvider(t *testing.T) {
	core := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{Level: zapcore.InfoLevel})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}
