package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PageRendersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "choropleth_page_renders_total",
		Help: "Total number of HTML map pages served",
	})
	TooltipTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "choropleth_tooltip_transitions_total",
		Help: "Tooltip transitions by kind",
	}, []string{"kind"})
	SessionEvictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "choropleth_session_evictions_total",
		Help: "Tooltip sessions dropped, by reason",
	}, []string{"reason"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "choropleth_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(PageRendersTotal)
	prometheus.MustRegister(TooltipTransitionsTotal)
	prometheus.MustRegister(SessionEvictionsTotal)
	prometheus.MustRegister(RequestDurationMs)
}
