package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, fmt.Errorf("observability: create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return provider, promhttp.Handler(), nil
}

// ---------------------------------------------------------------------------
// Wizard instruments
// ---------------------------------------------------------------------------

// WizardMetrics groups the counters and histograms recorded by the wizard
// service. The zero value is not usable; use NewWizardMetrics or NopMetrics.
type WizardMetrics struct {
	stepsSubmitted      metric.Int64Counter
	validationFailures  metric.Int64Counter
	persistenceFailures metric.Int64Counter
	providerCalls       metric.Int64Counter
	providerErrors      metric.Int64Counter
	leadsForwarded      metric.Int64Counter
	calcDuration        metric.Float64Histogram
}

// NewWizardMetrics registers the wizard instruments on the given provider.
func NewWizardMetrics(mp metric.MeterProvider) (*WizardMetrics, error) {
	m := mp.Meter("homelead/wizard")
	var (
		wm  WizardMetrics
		err error
	)
	if wm.stepsSubmitted, err = m.Int64Counter("wizard_steps_submitted_total",
		metric.WithDescription("Completed step submissions by service and step.")); err != nil {
		return nil, err
	}
	if wm.validationFailures, err = m.Int64Counter("wizard_validation_failures_total",
		metric.WithDescription("Step submissions rejected by schema validation.")); err != nil {
		return nil, err
	}
	if wm.persistenceFailures, err = m.Int64Counter("wizard_persistence_failures_total",
		metric.WithDescription("Step saves that exhausted their retries.")); err != nil {
		return nil, err
	}
	if wm.providerCalls, err = m.Int64Counter("wizard_provider_calls_total",
		metric.WithDescription("Calls to external providers.")); err != nil {
		return nil, err
	}
	if wm.providerErrors, err = m.Int64Counter("wizard_provider_errors_total",
		metric.WithDescription("Failed calls to external providers.")); err != nil {
		return nil, err
	}
	if wm.leadsForwarded, err = m.Int64Counter("wizard_leads_forwarded_total",
		metric.WithDescription("Completed sessions forwarded to a lead sink.")); err != nil {
		return nil, err
	}
	if wm.calcDuration, err = m.Float64Histogram("wizard_profile_calc_seconds",
		metric.WithDescription("Loan profile computation latency."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &wm, nil
}

// NopMetrics returns instruments backed by a no-op provider.
func NopMetrics() *WizardMetrics {
	wm, _ := NewWizardMetrics(noop.NewMeterProvider())
	return wm
}

func (m *WizardMetrics) StepSubmitted(ctx context.Context, service, step string) {
	m.stepsSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service), attribute.String("step", step)))
}

func (m *WizardMetrics) ValidationFailed(ctx context.Context, step string) {
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

func (m *WizardMetrics) PersistenceFailed(ctx context.Context) {
	m.persistenceFailures.Add(ctx, 1)
}

// ProviderCall records one provider call and, when err is non-nil, one error.
func (m *WizardMetrics) ProviderCall(ctx context.Context, provider string, err error) {
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	m.providerCalls.Add(ctx, 1, attrs)
	if err != nil {
		m.providerErrors.Add(ctx, 1, attrs)
	}
}

func (m *WizardMetrics) LeadForwarded(ctx context.Context, sink string) {
	m.leadsForwarded.Add(ctx, 1, metric.WithAttributes(attribute.String("sink", sink)))
}

func (m *WizardMetrics) CalcDuration(ctx context.Context, seconds float64) {
	m.calcDuration.Record(ctx, seconds)
}
