package orders

import (
	"errors"
	"strings"
	"testing"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
)

func TestValidCustomer(t *testing.T) {
	got, err := validCustomer("  Maria Silva  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Maria Silva" {
		t.Errorf("expected trimmed name, got %q", got)
	}

	if _, err := validCustomer("   "); err == nil {
		t.Error("blank customer must be rejected")
	}
	if _, err := validCustomer(strings.Repeat("x", maxCustomerLen+1)); err == nil {
		t.Error("overlong customer must be rejected")
	}
}

func TestValidItems(t *testing.T) {
	cases := []struct {
		name  string
		items []ItemInput
		ok    bool
	}{
		{"valid", []ItemInput{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 3}}, true},
		{"empty list", nil, false},
		{"zero quantity", []ItemInput{{ProductID: "a", Quantity: 0}}, false},
		{"negative quantity", []ItemInput{{ProductID: "a", Quantity: -2}}, false},
		{"missing product id", []ItemInput{{Quantity: 1}}, false},
		{"duplicate product", []ItemInput{{ProductID: "a", Quantity: 1}, {ProductID: "a", Quantity: 2}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validItems(tc.items)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				var ve *fault.Validation
				if !errors.As(err, &ve) {
					t.Fatalf("expected validation error, got %v", err)
				}
			}
		})
	}
}
