// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otlp exports traces, metrics and logs to an OpenTelemetry collector.
//
// The transport and collector address follow the standard OTLP environment
// variables, with the signal specific variable taking precedence:
//   - OTEL_EXPORTER_OTLP_PROTOCOL, OTEL_EXPORTER_OTLP_{TRACES,METRICS,LOGS}_PROTOCOL
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_{TRACES,METRICS,LOGS}_ENDPOINT
package otlp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/z5labs/items/config"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Protocol is the OTLP transport.
type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http/protobuf"
)

// UnsupportedProtocolError is returned for any [Protocol] other than
// [ProtocolGRPC] and [ProtocolHTTP].
type UnsupportedProtocolError struct {
	Protocol Protocol
}

func (e UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("otlp: unsupported protocol: %q", string(e.Protocol))
}

// Signal names the telemetry signal an exporter carries.
type Signal string

const (
	Traces  Signal = "TRACES"
	Metrics Signal = "METRICS"
	Logs    Signal = "LOGS"
)

// ProtocolFromEnv reads the transport for signal. It defaults to [ProtocolGRPC].
func ProtocolFromEnv(signal Signal) config.Reader[Protocol] {
	return config.Default(
		ProtocolGRPC,
		config.Map(
			config.Or(
				config.Env("OTEL_EXPORTER_OTLP_"+string(signal)+"_PROTOCOL"),
				config.Env("OTEL_EXPORTER_OTLP_PROTOCOL"),
			),
			func(_ context.Context, s string) (Protocol, error) {
				return Protocol(s), nil
			},
		),
	)
}

// EndpointFromEnv reads the collector address for signal.
func EndpointFromEnv(signal Signal) config.Reader[string] {
	return config.Or(
		config.Env("OTEL_EXPORTER_OTLP_"+string(signal)+"_ENDPOINT"),
		config.Env("OTEL_EXPORTER_OTLP_ENDPOINT"),
	)
}

// GrpcConn dials the collector without transport security.
type GrpcConn struct {
	Target config.Reader[string]
}

// Read implements the [config.Reader] interface.
// Targets given as http(s) URLs are reduced to their host.
func (gc GrpcConn) Read(ctx context.Context) (config.Value[*grpc.ClientConn], error) {
	target, err := config.Read(ctx, gc.Target)
	if err != nil {
		return config.Value[*grpc.ClientConn]{}, err
	}

	cc, err := grpc.NewClient(
		grpcTarget(target),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return config.Value[*grpc.ClientConn]{}, err
	}
	return config.ValueOf(cc), nil
}

func grpcTarget(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return endpoint
	}
	return u.Host
}

func hasScheme(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

// TraceExporter builds an OTLP span exporter for the configured [Protocol].
type TraceExporter struct {
	Protocol config.Reader[Protocol]
	Endpoint config.Reader[string]
}

// TraceExporterFromEnv configures a [TraceExporter] from the environment.
func TraceExporterFromEnv() TraceExporter {
	return TraceExporter{
		Protocol: ProtocolFromEnv(Traces),
		Endpoint: EndpointFromEnv(Traces),
	}
}

// Read implements the [config.Reader] interface. The endpoint is required.
func (cfg TraceExporter) Read(ctx context.Context) (config.Value[sdktrace.SpanExporter], error) {
	endpoint, err := config.Read(ctx, cfg.Endpoint)
	if err != nil {
		return config.Value[sdktrace.SpanExporter]{}, err
	}

	var exp sdktrace.SpanExporter
	switch protocol := config.MustOr(ctx, ProtocolGRPC, cfg.Protocol); protocol {
	case ProtocolGRPC:
		cc, err := config.Read(ctx, GrpcConn{Target: config.ReaderOf(endpoint)})
		if err != nil {
			return config.Value[sdktrace.SpanExporter]{}, err
		}
		grpcExp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(cc))
		if err != nil {
			return config.Value[sdktrace.SpanExporter]{}, errors.Join(err, cc.Close())
		}
		exp = grpcSpanExporter{SpanExporter: grpcExp, cc: cc}
	case ProtocolHTTP:
		opt := otlptracehttp.WithEndpoint(endpoint)
		if hasScheme(endpoint) {
			opt = otlptracehttp.WithEndpointURL(endpoint)
		}
		exp, err = otlptracehttp.New(ctx, opt)
		if err != nil {
			return config.Value[sdktrace.SpanExporter]{}, err
		}
	default:
		return config.Value[sdktrace.SpanExporter]{}, UnsupportedProtocolError{Protocol: protocol}
	}
	return config.ValueOf(exp), nil
}

// The OTLP gRPC exporters never close a connection they were handed.
type grpcSpanExporter struct {
	sdktrace.SpanExporter

	cc *grpc.ClientConn
}

func (e grpcSpanExporter) Shutdown(ctx context.Context) error {
	return errors.Join(e.SpanExporter.Shutdown(ctx), e.cc.Close())
}

// MetricExporter builds an OTLP metric exporter for the configured [Protocol].
type MetricExporter struct {
	Protocol config.Reader[Protocol]
	Endpoint config.Reader[string]
}

// MetricExporterFromEnv configures a [MetricExporter] from the environment.
func MetricExporterFromEnv() MetricExporter {
	return MetricExporter{
		Protocol: ProtocolFromEnv(Metrics),
		Endpoint: EndpointFromEnv(Metrics),
	}
}

// Read implements the [config.Reader] interface. The endpoint is required.
func (cfg MetricExporter) Read(ctx context.Context) (config.Value[sdkmetric.Exporter], error) {
	endpoint, err := config.Read(ctx, cfg.Endpoint)
	if err != nil {
		return config.Value[sdkmetric.Exporter]{}, err
	}

	var exp sdkmetric.Exporter
	switch protocol := config.MustOr(ctx, ProtocolGRPC, cfg.Protocol); protocol {
	case ProtocolGRPC:
		cc, err := config.Read(ctx, GrpcConn{Target: config.ReaderOf(endpoint)})
		if err != nil {
			return config.Value[sdkmetric.Exporter]{}, err
		}
		grpcExp, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(cc))
		if err != nil {
			return config.Value[sdkmetric.Exporter]{}, errors.Join(err, cc.Close())
		}
		exp = grpcMetricExporter{Exporter: grpcExp, cc: cc}
	case ProtocolHTTP:
		opt := otlpmetrichttp.WithEndpoint(endpoint)
		if hasScheme(endpoint) {
			opt = otlpmetrichttp.WithEndpointURL(endpoint)
		}
		exp, err = otlpmetrichttp.New(ctx, opt)
		if err != nil {
			return config.Value[sdkmetric.Exporter]{}, err
		}
	default:
		return config.Value[sdkmetric.Exporter]{}, UnsupportedProtocolError{Protocol: protocol}
	}
	return config.ValueOf(exp), nil
}

type grpcMetricExporter struct {
	sdkmetric.Exporter

	cc *grpc.ClientConn
}

func (e grpcMetricExporter) Shutdown(ctx context.Context) error {
	return errors.Join(e.Exporter.Shutdown(ctx), e.cc.Close())
}

// LogExporter builds an OTLP log exporter for the configured [Protocol].
type LogExporter struct {
	Protocol config.Reader[Protocol]
	Endpoint config.Reader[string]
}

// LogExporterFromEnv configures a [LogExporter] from the environment.
func LogExporterFromEnv() LogExporter {
	return LogExporter{
		Protocol: ProtocolFromEnv(Logs),
		Endpoint: EndpointFromEnv(Logs),
	}
}

// Read implements the [config.Reader] interface. The endpoint is required.
func (cfg LogExporter) Read(ctx context.Context) (config.Value[sdklog.Exporter], error) {
	endpoint, err := config.Read(ctx, cfg.Endpoint)
	if err != nil {
		return config.Value[sdklog.Exporter]{}, err
	}

	var exp sdklog.Exporter
	switch protocol := config.MustOr(ctx, ProtocolGRPC, cfg.Protocol); protocol {
	case ProtocolGRPC:
		cc, err := config.Read(ctx, GrpcConn{Target: config.ReaderOf(endpoint)})
		if err != nil {
			return config.Value[sdklog.Exporter]{}, err
		}
		grpcExp, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(cc))
		if err != nil {
			return config.Value[sdklog.Exporter]{}, errors.Join(err, cc.Close())
		}
		exp = grpcLogExporter{Exporter: grpcExp, cc: cc}
	case ProtocolHTTP:
		opt := otlploghttp.WithEndpoint(endpoint)
		if hasScheme(endpoint) {
			opt = otlploghttp.WithEndpointURL(endpoint)
		}
		exp, err = otlploghttp.New(ctx, opt)
		if err != nil {
			return config.Value[sdklog.Exporter]{}, err
		}
	default:
		return config.Value[sdklog.Exporter]{}, UnsupportedProtocolError{Protocol: protocol}
	}
	return config.ValueOf(exp), nil
}

type grpcLogExporter struct {
	sdklog.Exporter

	cc *grpc.ClientConn
}

func (e grpcLogExporter) Shutdown(ctx context.Context) error {
	return errors.Join(e.Exporter.Shutdown(ctx), e.cc.Close())
}
