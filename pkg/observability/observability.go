// Package observability wires OpenTelemetry tracing and RED (Rate,
// Errors, Duration) metrics around the three operations an issuer
// process actually performs repeatedly: building a batch's Merkle
// tree, signing its rotated validity window, and a relying party's
// certificate verification. Nothing in pkg/mtc, pkg/merkle,
// pkg/validitywindow, or pkg/certificate imports this package — the
// core stays instrumentable but not instrumentation-dependent;
// cmd/mtc wraps its own calls into those packages with the Track*
// helpers below.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // e.g. "localhost:4317"
	SampleRate     float64
	BatchTimeout   time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns the default issuer settings: telemetry enabled,
// exported to a local OTLP endpoint, tagged with the "development"
// environment.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "mtc-issuer",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        true,
		Insecure:       false,
	}
}

// Provider manages the trace and metric providers for one process and
// the named instruments issuance and verification record against.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	logger         *slog.Logger

	batchesIssued       metric.Int64Counter
	assertionsCertified metric.Int64Counter
	verifications       metric.Int64Counter
	operationErrors     metric.Int64Counter
	operationDuration   metric.Float64Histogram
	operationsInFlight  metric.Int64UpDownCounter
}

// New creates an observability provider. A nil config uses DefaultConfig.
// A disabled config returns a Provider whose Track* methods are no-ops,
// so callers never need to branch on whether telemetry is turned on.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "observability"),
	}

	if !config.Enabled {
		p.logger.InfoContext(ctx, "observability disabled")
		return p, nil
	}

	res, err := buildResource(config)
	if err != nil {
		return nil, fmt.Errorf("observability: build resource: %w", err)
	}

	if err := p.initTraceProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("observability: init trace provider: %w", err)
	}
	if err := p.initMetricProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("observability: init metric provider: %w", err)
	}

	p.tracer = otel.Tracer("mtc.issuer", trace.WithInstrumentationVersion(config.ServiceVersion))
	meter := otel.Meter("mtc.issuer", metric.WithInstrumentationVersion(config.ServiceVersion))
	if err := p.initInstruments(meter); err != nil {
		return nil, fmt.Errorf("observability: init instruments: %w", err)
	}

	p.logger.InfoContext(ctx, "observability initialized",
		"service", config.ServiceName,
		"environment", config.Environment,
		"endpoint", config.OTLPEndpoint,
		"sample_rate", config.SampleRate,
	)

	return p, nil
}

func buildResource(config *Config) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
			attribute.String("mtc.component", "issuer"),
		),
	)
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func (p *Provider) initTraceProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(p.config.BatchTimeout)),
		sdktrace.WithSampler(samplerFor(p.config.SampleRate)),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create metric exporter: %w", err)
	}

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initInstruments(meter metric.Meter) error {
	var err error

	if p.batchesIssued, err = meter.Int64Counter("mtc.batches.issued",
		metric.WithDescription("Batches built, signed, and published"), metric.WithUnit("{batch}")); err != nil {
		return err
	}
	if p.assertionsCertified, err = meter.Int64Counter("mtc.assertions.certified",
		metric.WithDescription("Assertions certified across all issued batches"), metric.WithUnit("{assertion}")); err != nil {
		return err
	}
	if p.verifications, err = meter.Int64Counter("mtc.certificates.verified",
		metric.WithDescription("Certificate verifications, by result"), metric.WithUnit("{certificate}")); err != nil {
		return err
	}
	if p.operationErrors, err = meter.Int64Counter("mtc.operations.errors",
		metric.WithDescription("Issuance and verification operations that returned an error"), metric.WithUnit("{error}")); err != nil {
		return err
	}
	if p.operationDuration, err = meter.Float64Histogram("mtc.operations.duration",
		metric.WithDescription("Operation duration in seconds"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0)); err != nil {
		return err
	}
	if p.operationsInFlight, err = meter.Int64UpDownCounter("mtc.operations.active",
		metric.WithDescription("Operations currently in flight"), metric.WithUnit("{operation}")); err != nil {
		return err
	}
	return nil
}

// Shutdown flushes and closes the trace and metric providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "shutdown trace provider failed", "error", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "shutdown metric provider failed", "error", err)
		}
	}
	return nil
}

// Tracer returns the provider's tracer, falling back to the global one
// so a Provider built from a disabled config still yields a usable
// no-op tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p.tracer == nil {
		return otel.Tracer("mtc.issuer")
	}
	return p.tracer
}

// NewCorrelationID mints an identifier for one issuance or verification
// run. cmd/mtc attaches it to every span the run opens, so an operator can
// follow one CLI invocation across its spans and metrics; `mtc issue` also
// prints it in its final summary line, `mtc verify` does not print it.
func NewCorrelationID() string {
	return uuid.NewString()
}

// trackOperation starts a span and RED metrics around an operation
// named name, tagged with correlationID and attrs, and returns the
// derived context plus a completion func recording duration and, if
// passed a non-nil error, the error count and span status.
func (p *Provider) trackOperation(ctx context.Context, name, correlationID string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	attrs = append(attrs, attribute.String("mtc.correlation_id", correlationID))

	ctx, span := p.Tracer().Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
	if p.operationsInFlight != nil {
		p.operationsInFlight.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	return ctx, func(err error) {
		duration := time.Since(start)
		if p.operationsInFlight != nil {
			p.operationsInFlight.Add(ctx, -1, metric.WithAttributes(attrs...))
		}
		if p.operationDuration != nil {
			p.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if p.operationErrors != nil {
				errAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.String("error.type", fmt.Sprintf("%T", err)))
				p.operationErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
			}
		}
		span.End()
	}
}

// TrackBatchBuild wraps one batch's tree construction.
func (p *Provider) TrackBatchBuild(ctx context.Context, correlationID string, issuerID string, batchNumber uint32) (context.Context, func(error)) {
	return p.trackOperation(ctx, "mtc.batch.build", correlationID,
		attribute.String("mtc.issuer_id", issuerID),
		attribute.Int64("mtc.batch_number", int64(batchNumber)),
	)
}

// TrackValidityWindowSign wraps signing the rotated validity window
// for one batch.
func (p *Provider) TrackValidityWindowSign(ctx context.Context, correlationID string, issuerID string, batchNumber uint32) (context.Context, func(error)) {
	return p.trackOperation(ctx, "mtc.validitywindow.sign", correlationID,
		attribute.String("mtc.issuer_id", issuerID),
		attribute.Int64("mtc.batch_number", int64(batchNumber)),
	)
}

// TrackCertificateVerify wraps a relying party's certificate
// verification.
func (p *Provider) TrackCertificateVerify(ctx context.Context, correlationID string, issuerID string) (context.Context, func(error)) {
	return p.trackOperation(ctx, "mtc.certificate.verify", correlationID,
		attribute.String("mtc.issuer_id", issuerID),
	)
}

// RecordBatchIssued records a successfully issued batch of n assertions
// for issuerID.
func (p *Provider) RecordBatchIssued(ctx context.Context, issuerID string, n int) {
	attrs := metric.WithAttributes(attribute.String("mtc.issuer_id", issuerID))
	if p.batchesIssued != nil {
		p.batchesIssued.Add(ctx, 1, attrs)
	}
	if p.assertionsCertified != nil {
		p.assertionsCertified.Add(ctx, int64(n), attrs)
	}
}

// RecordVerification records the outcome of one certificate
// verification for issuerID.
func (p *Provider) RecordVerification(ctx context.Context, issuerID string, ok bool) {
	if p.verifications == nil {
		return
	}
	p.verifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mtc.issuer_id", issuerID),
		attribute.Bool("mtc.verification.ok", ok),
	))
}
