package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "remotekey"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Connection metrics
	ConnectionsTotal  metric.Int64Counter
	RejectedTotal     metric.Int64Counter
	AuthFailuresTotal metric.Int64Counter
	ActiveSessions    metric.Int64UpDownCounter
	SessionDuration   metric.Float64Histogram

	// Message metrics
	MessagesTotal metric.Int64Counter

	// Injection metrics
	InjectionErrorsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance bound to the global meter
// provider, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = NewMetrics(otel.GetMeterProvider())
	})
	return metrics
}

// NewMetrics creates all metric instruments from provider
func NewMetrics(provider metric.MeterProvider) *Metrics {
	meter := provider.Meter(meterName)

	m := &Metrics{}

	m.ConnectionsTotal, _ = meter.Int64Counter(
		"remotekey.connections.total",
		metric.WithDescription("Total number of accepted client connections"),
		metric.WithUnit("{connection}"),
	)

	m.RejectedTotal, _ = meter.Int64Counter(
		"remotekey.connections.rejected.total",
		metric.WithDescription("Total number of connections rejected because a session was active"),
		metric.WithUnit("{connection}"),
	)

	m.AuthFailuresTotal, _ = meter.Int64Counter(
		"remotekey.auth.failures.total",
		metric.WithDescription("Total number of failed authentications by reason"),
		metric.WithUnit("{attempt}"),
	)

	m.ActiveSessions, _ = meter.Int64UpDownCounter(
		"remotekey.sessions.active",
		metric.WithDescription("Number of authenticated sessions"),
		metric.WithUnit("{session}"),
	)

	m.SessionDuration, _ = meter.Float64Histogram(
		"remotekey.sessions.duration",
		metric.WithDescription("Duration of client sessions"),
		metric.WithUnit("s"),
	)

	m.MessagesTotal, _ = meter.Int64Counter(
		"remotekey.messages.total",
		metric.WithDescription("Total number of client messages by kind"),
		metric.WithUnit("{message}"),
	)

	m.InjectionErrorsTotal, _ = meter.Int64Counter(
		"remotekey.injection.errors.total",
		metric.WithDescription("Total number of failed input injections by operation"),
		metric.WithUnit("{error}"),
	)

	return m
}

// CountMessage records one client message of the given kind.
func (m *Metrics) CountMessage(ctx context.Context, kind string) {
	m.MessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// CountAuthFailure records one failed authentication.
func (m *Metrics) CountAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// CountInjectionError records one failed injection.
func (m *Metrics) CountInjectionError(ctx context.Context, op string) {
	m.InjectionErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
