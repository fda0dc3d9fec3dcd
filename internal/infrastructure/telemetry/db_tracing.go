package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm integration.
type DBTracingConfig struct {
	Enabled          bool
	SlowQueryThresh  time.Duration // queries above this get a slow_query event
	DBSystem         string        // reported db name, "postgresql"
	WithoutVariables bool          // strip bind variables from recorded SQL
}

// DefaultDBTracingConfig returns the secure defaults: disabled, variables
// stripped, 200ms slow threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin registers otelgorm on a gorm.DB and layers slow-query
// detection and error marking on top of the spans otelgorm creates.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin; call RegisterOtelGorm to attach it.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm installs otelgorm plus the timing callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if p.config.WithoutVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerTimingCallbacks hooks every gorm operation kind with a start-time
// recorder and the post-operation span enricher. The callback processors
// are unexported gorm types, so each kind is registered explicitly.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	for _, step := range []struct {
		name     string
		register func(kind string) error
	}{
		{"create", func(kind string) error {
			if err := db.Callback().Create().Before("gorm:" + kind).Register("otel_timing:before_"+kind, markQueryStart); err != nil {
				return err
			}
			return db.Callback().Create().After("gorm:" + kind).Register("otel_timing:after_"+kind, p.enrichSpan)
		}},
		{"query", func(kind string) error {
			if err := db.Callback().Query().Before("gorm:" + kind).Register("otel_timing:before_"+kind, markQueryStart); err != nil {
				return err
			}
			return db.Callback().Query().After("gorm:" + kind).Register("otel_timing:after_"+kind, p.enrichSpan)
		}},
		{"update", func(kind string) error {
			if err := db.Callback().Update().Before("gorm:" + kind).Register("otel_timing:before_"+kind, markQueryStart); err != nil {
				return err
			}
			return db.Callback().Update().After("gorm:" + kind).Register("otel_timing:after_"+kind, p.enrichSpan)
		}},
		{"delete", func(kind string) error {
			if err := db.Callback().Delete().Before("gorm:" + kind).Register("otel_timing:before_"+kind, markQueryStart); err != nil {
				return err
			}
			return db.Callback().Delete().After("gorm:" + kind).Register("otel_timing:after_"+kind, p.enrichSpan)
		}},
		{"row", func(kind string) error {
			if err := db.Callback().Row().Before("gorm:" + kind).Register("otel_timing:before_"+kind, markQueryStart); err != nil {
				return err
			}
			return db.Callback().Row().After("gorm:" + kind).Register("otel_timing:after_"+kind, p.enrichSpan)
		}},
		{"raw", func(kind string) error {
			if err := db.Callback().Raw().Before("gorm:" + kind).Register("otel_timing:before_"+kind, markQueryStart); err != nil {
				return err
			}
			return db.Callback().Raw().After("gorm:" + kind).Register("otel_timing:after_"+kind, p.enrichSpan)
		}},
	} {
		if err := step.register(step.name); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = WithQueryStartTime(db.Statement.Context)
	}
}

// enrichSpan annotates the otelgorm span with row counts, the table name,
// errors, and a slow-query event when the threshold is exceeded.
func (p *DBTracingPlugin) enrichSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(startTime); elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime stamps the query start for slow-query measurement.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
