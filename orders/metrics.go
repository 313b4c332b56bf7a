package orders

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed",
	})
	ordersFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_finished_total",
		Help: "Orders that reached a terminal status",
	}, []string{"status"})
	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Payments recorded",
	}, []string{"method"})
)
