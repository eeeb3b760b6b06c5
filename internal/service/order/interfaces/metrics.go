// internal/service/order/interfaces/metrics.go
package interfaces

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vesta_order_cancellations_total",
		Help: "Order cancellations by canceller type and outcome.",
	}, []string{"canceller_type", "outcome"})

	refundExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vesta_refund_executions_total",
		Help: "Refund execution attempts by result.",
	}, []string{"result"})
)
