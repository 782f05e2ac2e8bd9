package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "mailchimp_notifier",
	Name:      "invocations_total",
	Help:      "Invocations received, partitioned by operation and outcome.",
}, []string{"operation", "status"})
