package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	base := &InsufficientStock{ProductID: "p1", Requested: 5, Available: 2}
	wrapped := fmt.Errorf("create order: %w", base)

	var is *InsufficientStock
	if !errors.As(wrapped, &is) {
		t.Fatal("expected InsufficientStock to match through wrapping")
	}
	if is.Requested != 5 || is.Available != 2 {
		t.Errorf("unexpected fields: %+v", is)
	}

	var nf *NotFound
	if errors.As(wrapped, &nf) {
		t.Error("InsufficientStock must not match NotFound")
	}
}

func TestMessages(t *testing.T) {
	if got := Validationf("bad %s", "input").Error(); got != "bad input" {
		t.Errorf("validation message: %q", got)
	}
	nf := &NotFound{Entity: "product", ID: "abc"}
	if got := nf.Error(); got != "product not found: abc" {
		t.Errorf("not found message: %q", got)
	}
	if got := Conflictf("referenced").Error(); got != "referenced" {
		t.Errorf("conflict message: %q", got)
	}
}
