// Package otel publishes techhatch client metrics through an OpenTelemetry Meter.
//
// [New] registers one Int64ObservableCounter per client counter and one
// Int64ObservableGauge per latency bucket. A single callback reads
// Client.MetricsSnapshot on every collection cycle. The caller owns the
// MeterProvider.
package otel
