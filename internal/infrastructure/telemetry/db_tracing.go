package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled    bool   // register otelgorm at all
	LogFullSQL bool   // keep query variables in db.statement; development only
	DBSystem   string // db.system attribute, e.g. "sqlite" or "postgresql"
}

// DBTracingPlugin registers otelgorm on a GORM handle.
type DBTracingPlugin struct {
	config   DBTracingConfig
	provider trace.TracerProvider
	logger   *zap.Logger
}

// NewDBTracingPlugin creates a plugin that records spans on provider.
// A nil provider means the global one.
func NewDBTracingPlugin(cfg DBTracingConfig, provider trace.TracerProvider, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, provider: provider, logger: logger}
}

// RegisterOtelGorm installs otelgorm callbacks on db. It is a no-op when disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if p.provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.provider))
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}
