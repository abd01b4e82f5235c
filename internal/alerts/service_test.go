package alerts

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/lucasvieira/go-stock-orders/internal/kafka"
	"github.com/lucasvieira/go-stock-orders/internal/orders"
)

func TestHandleOrderEventIgnoresIrrelevantTypes(t *testing.T) {
	// deletes only raise stock; the handler must bail out before touching
	// any backing store
	s := &Service{Log: zap.NewNop().Sugar()}

	env := orders.Envelope{
		EventID:    "ev1",
		EventType:  orders.EventOrderDeleted,
		OccurredAt: time.Now().UTC(),
		Payload:    kafkax.MustMarshal(orders.OrderEventPayload{OrderID: "o1"}),
	}
	msg := kafkago.Message{Value: kafkax.MustMarshal(env)}

	if err := s.HandleOrderEvent(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleOrderEventRejectsMalformedEnvelope(t *testing.T) {
	s := &Service{Log: zap.NewNop().Sugar()}
	msg := kafkago.Message{Value: []byte(`{not json`)}

	if err := s.HandleOrderEvent(context.Background(), msg); err == nil {
		t.Error("expected decode error")
	}
}
