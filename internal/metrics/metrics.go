package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed successfully.",
	})
	OrdersUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_updated_total",
		Help: "Order item-set replacements committed successfully.",
	})
	OrdersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_deleted_total",
		Help: "Orders deleted with their stock effect reversed.",
	})
	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_stock_rejections_total",
		Help: "Order operations rejected for insufficient stock.",
	})
)
