package handlers

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ringsTotal          prometheus.Counter
	pushSentTotal       *prometheus.CounterVec
	opensRequestedTotal prometheus.Counter
	consumesTotal       prometheus.Counter

	metricsOnce sync.Once
)

// InitMetrics registers the doorbell counters. Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		ringsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "picobell",
			Name:      "rings_total",
			Help:      "Total number of ring events recorded.",
		})
		pushSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "picobell",
			Name:      "push_sent_total",
			Help:      "Push notifications attempted, by result.",
		}, []string{"result"})
		opensRequestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "picobell",
			Name:      "opens_requested_total",
			Help:      "Total number of accepted open requests.",
		})
		consumesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "picobell",
			Name:      "consumes_total",
			Help:      "Total number of open flags consumed by device polls.",
		})
		prometheus.MustRegister(ringsTotal, pushSentTotal, opensRequestedTotal, consumesTotal)
	})
}
