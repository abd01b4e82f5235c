package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated  = "OrderCreated"
	EventOrderUpdated  = "OrderUpdated"
	EventOrderDeleted  = "OrderDeleted"
	EventStockAdjusted = "StockAdjusted"
	EventLowStockAlert = "LowStockAlert"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemSnapshot struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderEventPayload is shared by OrderCreated, OrderUpdated and
// OrderDeleted; for deletes the items are the set whose stock effect was
// just reversed.
type OrderEventPayload struct {
	OrderID  string          `json:"order_id"`
	Customer string          `json:"customer"`
	Items    []ItemSnapshot  `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

// StockAdjustedPayload reports a direct stock edit on the product ledger,
// outside any order.
type StockAdjustedPayload struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type LowStockAlertPayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

func ToSnapshots(items []Item) []ItemSnapshot {
	out := make([]ItemSnapshot, 0, len(items))
	for _, it := range items {
		out = append(out, ItemSnapshot{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return out
}
