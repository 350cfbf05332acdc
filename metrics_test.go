// metrics_test.go: tests for the in-memory metrics collector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMetricsCollector(t *testing.T) {
	m := NewDefaultMetricsCollector()
	labels := map[string]string{"integration": "mailer", "result": "patched"}

	m.IncrementCounter(MetricActivationsTotal, labels, 1)
	m.IncrementCounter(MetricActivationsTotal, map[string]string{"result": "patched", "integration": "mailer"}, 2)
	m.SetGauge(MetricComponentsActive, nil, 1)
	m.SetGauge(MetricComponentsActive, nil, 0)
	m.RecordHistogram(MetricActivationSeconds, nil, 0.5)
	m.RecordHistogram(MetricActivationSeconds, nil, 1.5)

	assert.Equal(t, int64(3), m.Counter(MetricActivationsTotal, labels))
	assert.Equal(t, float64(0), m.Gauge(MetricComponentsActive, nil))

	all := m.GetMetrics()
	assert.Equal(t, int64(3), all["integration_activations_total{integration=mailer,result=patched}"])
	assert.Equal(t, int64(2), all[MetricActivationSeconds+"_count"])
	assert.Equal(t, 2.0, all[MetricActivationSeconds+"_sum"])
}

func TestDefaultMetricsCollector_HistogramIsBounded(t *testing.T) {
	m := NewDefaultMetricsCollector()
	for i := 0; i < 1500; i++ {
		m.RecordHistogram("h", nil, 1)
	}
	assert.Equal(t, int64(1000), m.GetMetrics()["h_count"])
}
