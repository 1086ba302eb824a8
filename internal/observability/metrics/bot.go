package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type BotMetrics struct {
	registry *prometheus.Registry

	eventTotal    *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	eventInFlight prometheus.Gauge
	sweptTotal    *prometheus.CounterVec
}

func NewBotMetrics(service string) *BotMetrics {
	registry := prometheus.NewRegistry()

	eventTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediaseek",
			Subsystem: "bot",
			Name:      "events_total",
			Help:      "Total processed chat events by kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	eventDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediaseek",
			Subsystem: "bot",
			Name:      "event_duration_seconds",
			Help:      "Chat event handling duration in seconds by kind and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "kind", "status"},
	)
	eventInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mediaseek",
			Subsystem: "bot",
			Name:      "events_in_flight",
			Help:      "Number of chat events being handled right now.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	sweptTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediaseek",
			Subsystem: "bot",
			Name:      "swept_deletions_total",
			Help:      "Total scheduled message deletions executed by the sweeper.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(eventTotal, eventDuration, eventInFlight, sweptTotal)

	return &BotMetrics{
		registry:      registry,
		eventTotal:    eventTotal,
		eventDuration: eventDuration,
		eventInFlight: eventInFlight,
		sweptTotal:    sweptTotal,
	}
}

func (m *BotMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BotMetrics) StartEvent() {
	m.eventInFlight.Inc()
}

func (m *BotMetrics) FinishEvent(service, kind string, duration time.Duration, err error) {
	m.eventInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.eventTotal.WithLabelValues(service, kind, status).Inc()
	m.eventDuration.WithLabelValues(service, kind, status).Observe(duration.Seconds())
}

func (m *BotMetrics) ObserveSweep(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.sweptTotal.WithLabelValues(service, status).Inc()
}
