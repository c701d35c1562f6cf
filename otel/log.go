// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/z5labs/items/config"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
)

// BatchLogProcessor exports log records in batches.
type BatchLogProcessor struct {
	Exporter           config.Reader[sdklog.Exporter]
	ExportInterval     config.Reader[time.Duration]
	MaxExportBatchSize config.Reader[int]
}

// LogExportIntervalFromEnv reads OTEL_BLP_EXPORT_INTERVAL.
func LogExportIntervalFromEnv() config.Reader[time.Duration] {
	return config.DurationFromString(config.Env("OTEL_BLP_EXPORT_INTERVAL"))
}

// LogMaxExportBatchSizeFromEnv reads OTEL_BLP_MAX_EXPORT_BATCH_SIZE.
func LogMaxExportBatchSizeFromEnv() config.Reader[int] {
	return config.IntFromString(config.Env("OTEL_BLP_MAX_EXPORT_BATCH_SIZE"))
}

// Read implements the [config.Reader] interface.
// The exporter is required. Batches default to 512 records every 1s.
func (cfg BatchLogProcessor) Read(ctx context.Context) (config.Value[sdklog.Processor], error) {
	exporter, err := config.Read(ctx, cfg.Exporter)
	if err != nil {
		return config.Value[sdklog.Processor]{}, err
	}

	blp := sdklog.NewBatchProcessor(
		exporter,
		sdklog.WithExportInterval(config.MustOr(ctx, time.Second, cfg.ExportInterval)),
		sdklog.WithExportMaxBatchSize(config.MustOr(ctx, 512, cfg.MaxExportBatchSize)),
	)
	return config.ValueOf[sdklog.Processor](blp), nil
}

// SimpleLogProcessor exports every record synchronously as it is emitted.
type SimpleLogProcessor struct {
	Exporter config.Reader[sdklog.Exporter]
}

// Read implements the [config.Reader] interface. The exporter is required.
func (cfg SimpleLogProcessor) Read(ctx context.Context) (config.Value[sdklog.Processor], error) {
	exporter, err := config.Read(ctx, cfg.Exporter)
	if err != nil {
		return config.Value[sdklog.Processor]{}, err
	}
	return config.ValueOf[sdklog.Processor](sdklog.NewSimpleProcessor(exporter)), nil
}

// LevelFilter drops records below a minimum level before they reach Processor.
//
// LoggerLevels overrides MinLevel per logger name. A name also matches
// every logger below it, e.g. "github.com/z5labs/items/rest" matches
// "github.com/z5labs/items/rest/internal", and the longest match wins.
type LevelFilter struct {
	Processor    config.Reader[sdklog.Processor]
	MinLevel     config.Reader[slog.Level]
	LoggerLevels config.Reader[map[string]slog.Level]
}

// LogLevel parses the string value of r as a [slog.Level], e.g. "debug",
// "info", "warn" or "error".
func LogLevel(r config.Reader[string]) config.Reader[slog.Level] {
	return config.Map(r, func(_ context.Context, s string) (slog.Level, error) {
		var level slog.Level
		err := level.UnmarshalText([]byte(s))
		return level, err
	})
}

// LoggerLevels parses every value of the map read from r with [LogLevel].
func LoggerLevels(r config.Reader[map[string]string]) config.Reader[map[string]slog.Level] {
	return config.Map(r, func(_ context.Context, m map[string]string) (map[string]slog.Level, error) {
		levels := make(map[string]slog.Level, len(m))
		for name, s := range m {
			var lvl slog.Level
			err := lvl.UnmarshalText([]byte(s))
			if err != nil {
				return nil, fmt.Errorf("invalid log level for %s: %w", name, err)
			}
			levels[name] = lvl
		}
		return levels, nil
	})
}

// LogLevelFromEnv reads ITEMS_LOG_LEVEL.
func LogLevelFromEnv() config.Reader[slog.Level] {
	return LogLevel(config.Env("ITEMS_LOG_LEVEL"))
}

// Read implements the [config.Reader] interface.
// The processor is required and the level defaults to [slog.LevelInfo].
// Loggers without an entry in LoggerLevels use MinLevel.
func (cfg LevelFilter) Read(ctx context.Context) (config.Value[sdklog.Processor], error) {
	inner, err := config.Read(ctx, cfg.Processor)
	if err != nil {
		return config.Value[sdklog.Processor]{}, err
	}

	loggerLevels, err := config.Read(ctx, cfg.LoggerLevels)
	if err != nil && !errors.Is(err, config.ErrValueNotSet) {
		return config.Value[sdklog.Processor]{}, err
	}

	p := &levelFilter{
		Processor:   inner,
		minSeverity: severity(config.MustOr(ctx, slog.LevelInfo, cfg.MinLevel)),
		loggers:     make([]loggerSeverity, 0, len(loggerLevels)),
	}
	for name, lvl := range loggerLevels {
		p.loggers = append(p.loggers, loggerSeverity{name: name, minSeverity: severity(lvl)})
	}
	slices.SortFunc(p.loggers, func(a, b loggerSeverity) int {
		return cmp.Compare(len(b.name), len(a.name))
	})
	return config.ValueOf[sdklog.Processor](p), nil
}

type loggerSeverity struct {
	name        string
	minSeverity log.Severity
}

type levelFilter struct {
	sdklog.Processor

	minSeverity log.Severity

	// longest name first
	loggers []loggerSeverity
}

func (p *levelFilter) severityFor(logger string) log.Severity {
	for _, l := range p.loggers {
		if logger == l.name || strings.HasPrefix(logger, l.name+"/") {
			return l.minSeverity
		}
	}
	return p.minSeverity
}

func (p *levelFilter) Enabled(ctx context.Context, param sdklog.EnabledParameters) bool {
	return param.Severity >= p.severityFor(param.InstrumentationScope.Name)
}

func (p *levelFilter) OnEmit(ctx context.Context, record *sdklog.Record) error {
	if record.Severity() < p.severityFor(record.InstrumentationScope().Name) {
		return nil
	}
	return p.Processor.OnEmit(ctx, record)
}

// otelslog maps slog.LevelDebug to log.SeverityDebug and keeps the
// relative offsets between levels.
const severityOffset = log.SeverityDebug - log.Severity(slog.LevelDebug)

func severity(level slog.Level) log.Severity {
	return log.Severity(level) + severityOffset
}

func level(sev log.Severity) slog.Level {
	return slog.Level(sev - severityOffset)
}

// LoggerProvider builds an SDK [log.LoggerProvider].
type LoggerProvider struct {
	Resource  config.Reader[*resource.Resource]
	Processor config.Reader[sdklog.Processor]
}

// Read implements the [config.Reader] interface. The processor is required.
func (cfg LoggerProvider) Read(ctx context.Context) (config.Value[log.LoggerProvider], error) {
	rsc, err := config.Read(ctx, config.Or[*resource.Resource](cfg.Resource, NewResource()))
	if err != nil {
		return config.Value[log.LoggerProvider]{}, err
	}

	p, err := config.Read(ctx, cfg.Processor)
	if err != nil {
		return config.Value[log.LoggerProvider]{}, err
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(rsc),
		sdklog.WithProcessor(p),
	)
	return config.ValueOf[log.LoggerProvider](lp), nil
}

// SlogExporter writes log records through a [slog.Handler].
// It lets the service log to stdout when no collector is configured.
type SlogExporter struct {
	handler slog.Handler
}

// NewJSONExporter returns a [SlogExporter] which writes JSON lines to w.
func NewJSONExporter(w io.Writer) *SlogExporter {
	return &SlogExporter{
		handler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
}

// Export implements the [sdklog.Exporter] interface.
func (e *SlogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	for _, record := range records {
		sr := slog.NewRecord(record.Timestamp(), level(record.Severity()), record.Body().AsString(), 0)
		sr.AddAttrs(slog.String("logger", record.InstrumentationScope().Name))

		record.WalkAttributes(func(kv log.KeyValue) bool {
			sr.AddAttrs(slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)})
			return true
		})

		if record.TraceID().IsValid() {
			sr.AddAttrs(
				slog.String("trace_id", record.TraceID().String()),
				slog.String("span_id", record.SpanID().String()),
			)
		}

		if err := e.handler.Handle(ctx, sr); err != nil {
			return err
		}
	}
	return nil
}

// ForceFlush implements the [sdklog.Exporter] interface.
func (e *SlogExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [sdklog.Exporter] interface.
func (e *SlogExporter) Shutdown(ctx context.Context) error {
	return nil
}

func slogValue(v log.Value) slog.Value {
	switch v.Kind() {
	case log.KindBool:
		return slog.BoolValue(v.AsBool())
	case log.KindInt64:
		return slog.Int64Value(v.AsInt64())
	case log.KindFloat64:
		return slog.Float64Value(v.AsFloat64())
	case log.KindString:
		return slog.StringValue(v.AsString())
	case log.KindBytes:
		return slog.AnyValue(v.AsBytes())
	case log.KindSlice:
		vs := v.AsSlice()
		out := make([]any, len(vs))
		for i, sv := range vs {
			out[i] = slogValue(sv).Any()
		}
		return slog.AnyValue(out)
	case log.KindMap:
		kvs := v.AsMap()
		attrs := make([]slog.Attr, len(kvs))
		for i, kv := range kvs {
			attrs[i] = slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)}
		}
		return slog.GroupValue(attrs...)
	default:
		return slog.StringValue(v.String())
	}
}
