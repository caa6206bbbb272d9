package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	expanded       prometheus.Histogram
}

var defaultMetrics = &metrics{
	requests: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_requests_total",
		Help: "Route requests by outcome",
	}, []string{"result"}),

	searchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_search_duration_seconds",
		Help:    "Nearest-node resolution plus A* search time",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	}),

	expanded: promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_search_expanded_nodes",
		Help:    "Nodes expanded per successful search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}),
}
