/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hyperledger/aries-proof-go/pkg/common/errkind"
)

const metricsNamespace = "aries_presentproof"

type metrics struct {
	operations *prometheus.CounterVec
	sends      *prometheus.HistogramVec
	sessions   *prometheus.GaugeVec
}

// newMetrics creates the client collectors. A nil registerer leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Session operations, labeled by role, operation and error kind.",
		}, []string{"role", "operation", "result"}),
		sends: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "send_duration_seconds",
			Help:      "Latency of outbound message delivery, labeled by message kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		sessions: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sessions",
			Help:      "Sessions currently held, labeled by role.",
		}, []string{"role"}),
	}
}

func (m *metrics) observe(role, op string, err error) {
	result := "ok"
	if err != nil {
		result = string(errkind.KindOf(err))
	}

	m.operations.WithLabelValues(role, op, result).Inc()
}
