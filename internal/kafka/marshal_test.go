package kafka

import (
	"encoding/json"
	"testing"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
		Qty     int    `json:"qty"`
	}

	raw := MustMarshal(payload{OrderID: "o1", Qty: 3})
	got, err := UnwrapPayload[payload](json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderID != "o1" || got.Qty != 3 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := UnwrapPayload[payload](json.RawMessage(`{broken`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}
