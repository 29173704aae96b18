package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	generationRequests metric.Int64Counter
	generationFailures metric.Int64Counter
	quotaDenied        metric.Int64Counter
	billingEvents      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "copyad"
	}
	meter := provider.Meter(name)

	generationRequests, err := meter.Int64Counter("copyad_generation_requests_total")
	if err != nil {
		return nil, err
	}
	generationFailures, err := meter.Int64Counter("copyad_generation_failures_total")
	if err != nil {
		return nil, err
	}
	quotaDenied, err := meter.Int64Counter("copyad_quota_denied_total")
	if err != nil {
		return nil, err
	}
	billingEvents, err := meter.Int64Counter("copyad_billing_events_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		generationRequests: generationRequests,
		generationFailures: generationFailures,
		quotaDenied:        quotaDenied,
		billingEvents:      billingEvents,
	}, nil
}

// RecordGeneration counts a completed generation request.
func (m *Metrics) RecordGeneration(ctx context.Context, attrs ...attribute.KeyValue) {
	if m == nil || m.generationRequests == nil {
		return
	}
	m.generationRequests.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordGenerationFailure counts a failed provider call.
func (m *Metrics) RecordGenerationFailure(ctx context.Context, attrs ...attribute.KeyValue) {
	if m == nil || m.generationFailures == nil {
		return
	}
	m.generationFailures.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordQuotaDenied counts a quota gate denial.
func (m *Metrics) RecordQuotaDenied(ctx context.Context, attrs ...attribute.KeyValue) {
	if m == nil || m.quotaDenied == nil {
		return
	}
	m.quotaDenied.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordBillingEvent counts a processed webhook event.
func (m *Metrics) RecordBillingEvent(ctx context.Context, attrs ...attribute.KeyValue) {
	if m == nil || m.billingEvents == nil {
		return
	}
	m.billingEvents.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// allowedLabels keeps metric cardinality bounded. User identifiers and emails
// must never become labels.
var allowedLabels = map[string]struct{}{
	"plan":       {},
	"platform":   {},
	"event_type": {},
	"outcome":    {},
	"route":      {},
	"method":     {},
	"status":     {},
}

// FilterAttributes drops attributes whose label is not in the allow list.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabels[string(attr.Key)]; !ok {
			continue
		}
		out = append(out, attr)
	}
	return out
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp metric protocol %q", protocol)
	}
}
