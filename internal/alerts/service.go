// Package alerts watches the order event stream and raises low-stock alerts
// for products an order pushed below the configured threshold.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/lucasvieira/go-stock-orders/internal/kafka"
	"github.com/lucasvieira/go-stock-orders/internal/orders"
	"github.com/lucasvieira/go-stock-orders/internal/redisx"
)

type Service struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Producer    *kafkax.Producer // publishes LowStockAlert
	Threshold   int
	ServiceName string
	Log         *zap.SugaredLogger
}

// HandleOrderEvent is wired as the consumer handler for the order topic.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	switch env.EventType {
	case orders.EventOrderCreated, orders.EventOrderUpdated:
	default:
		return nil // deletes and ledger edits only raise stock, never lower it
	}

	// dedup by event id so redeliveries are no-ops
	dkey := fmt.Sprintf(redisx.KeyDedup, "alerts", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderEventPayload](env.Payload)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.DB.Query(ctx,
		`SELECT id, name, stock FROM products WHERE id = ANY($1) AND stock < $2`,
		ids, s.Threshold)
	if err != nil {
		return err
	}
	defer rows.Close()

	type hit struct {
		id, name string
		stock    int
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.name, &h.stock); err != nil {
			return err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, h := range hits {
		// one alert per product per stock level; a restock resets the key
		akey := fmt.Sprintf(redisx.KeyLowStockAlert, h.id, h.stock)
		if exists, _ := redisx.Exists(ctx, s.Redis, akey); exists {
			continue
		}
		_ = s.Redis.Set(ctx, akey, "1", redisx.TTLLowStockAlert).Err()

		s.Log.Warnw("low stock", "product_id", h.id, "name", h.name,
			"stock", h.stock, "threshold", s.Threshold)
		s.publishAlert(h.id, h.name, h.stock, env.TraceID)
	}
	return nil
}

func (s *Service) publishAlert(productID, name string, stock int, trace string) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventLowStockAlert,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: productID,
		Payload: kafkax.MustMarshal(orders.LowStockAlertPayload{
			ProductID:   productID,
			ProductName: name,
			Stock:       stock,
			Threshold:   s.Threshold,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventLowStockAlert)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
