package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quarterpay",
		Name:      "calculations_total",
		Help:      "Salary calculations by outcome (ok, invalid_input, config_not_found, bad_request).",
	}, []string{"outcome"})

	totalScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quarterpay",
		Name:      "total_score",
		Help:      "Total weighted performance score of successful calculations.",
		Buckets:   prometheus.LinearBuckets(-100, 25, 13),
	})

	performancePayout = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quarterpay",
		Name:      "performance_payout",
		Help:      "Performance payout of successful calculations.",
		Buckets:   prometheus.LinearBuckets(-30000, 10000, 12),
	})
)
