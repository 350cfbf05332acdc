// metrics.go: Metrics collection for activations and component lifecycle
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sort"
	"strings"
	"sync"
)

// Metric names emitted by the core.
const (
	MetricActivationsTotal   = "integration_activations_total"
	MetricActivationSeconds  = "integration_activation_duration_seconds"
	MetricActivationState    = "integration_activation_state"
	MetricEligibleTotal      = "integration_eligible_total"
	MetricSkippedTotal       = "integration_skipped_total"
	MetricComponentsActive   = "integration_components_active"
	MetricComponentShutdowns = "integration_component_shutdowns_total"
)

// MetricsCollector receives counters, gauges and histogram observations.
//
// Example usage:
//
//	collector.IncrementCounter(MetricActivationsTotal,
//	    map[string]string{"integration": "mailer", "result": "patched"}, 1)
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string, value int64)
	SetGauge(name string, labels map[string]string, value float64)
	RecordHistogram(name string, labels map[string]string, value float64)
	GetMetrics() map[string]interface{}
}

// DefaultMetricsCollector is an in-memory MetricsCollector.
type DefaultMetricsCollector struct {
	mu         sync.RWMutex
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewDefaultMetricsCollector creates an empty in-memory collector.
func NewDefaultMetricsCollector() *DefaultMetricsCollector {
	return &DefaultMetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

// IncrementCounter implements MetricsCollector
func (dmc *DefaultMetricsCollector) IncrementCounter(name string, labels map[string]string, value int64) {
	dmc.mu.Lock()
	defer dmc.mu.Unlock()
	dmc.counters[metricKey(name, labels)] += value
}

// SetGauge implements MetricsCollector
func (dmc *DefaultMetricsCollector) SetGauge(name string, labels map[string]string, value float64) {
	dmc.mu.Lock()
	defer dmc.mu.Unlock()
	dmc.gauges[metricKey(name, labels)] = value
}

// RecordHistogram implements MetricsCollector
func (dmc *DefaultMetricsCollector) RecordHistogram(name string, labels map[string]string, value float64) {
	dmc.mu.Lock()
	defer dmc.mu.Unlock()

	key := metricKey(name, labels)
	dmc.histograms[key] = append(dmc.histograms[key], value)

	// Keep only last 1000 values to prevent memory growth
	if len(dmc.histograms[key]) > 1000 {
		dmc.histograms[key] = dmc.histograms[key][len(dmc.histograms[key])-1000:]
	}
}

// Counter returns the current value of a counter.
func (dmc *DefaultMetricsCollector) Counter(name string, labels map[string]string) int64 {
	dmc.mu.RLock()
	defer dmc.mu.RUnlock()
	return dmc.counters[metricKey(name, labels)]
}

// Gauge returns the current value of a gauge.
func (dmc *DefaultMetricsCollector) Gauge(name string, labels map[string]string) float64 {
	dmc.mu.RLock()
	defer dmc.mu.RUnlock()
	return dmc.gauges[metricKey(name, labels)]
}

// GetMetrics implements MetricsCollector
func (dmc *DefaultMetricsCollector) GetMetrics() map[string]interface{} {
	dmc.mu.RLock()
	defer dmc.mu.RUnlock()

	metrics := make(map[string]interface{})
	for k, v := range dmc.counters {
		metrics[k] = v
	}
	for k, v := range dmc.gauges {
		metrics[k] = v
	}
	for k, v := range dmc.histograms {
		if len(v) == 0 {
			continue
		}
		sum := 0.0
		for _, x := range v {
			sum += x
		}
		metrics[k+"_count"] = int64(len(v))
		metrics[k+"_sum"] = sum
	}
	return metrics
}

// metricKey renders name{k=v,...} with labels in sorted order.
func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}
