package redisx

import "time"

const (
	// Cached statistics report: report:stats -> JSON blob.
	KeyStats = "report:stats"

	// Dedup event processing: dedup:{service}:{id} (id = event_id).
	KeyDedup = "dedup:%s:%s"

	// Alert already raised for a product at a given stock level:
	// alert:low_stock:{product_id}:{stock}.
	KeyLowStockAlert = "alert:low_stock:%s:%d"
)

var (
	TTLStatsCache    = 60 * time.Second
	TTLDedup         = 48 * time.Hour
	TTLLowStockAlert = 24 * time.Hour
)
