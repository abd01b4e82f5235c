package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fault.Validationf("product name must not be empty")
	}
	if len(name) > maxNameLen {
		return "", fault.Validationf("product name must be at most %d characters", maxNameLen)
	}
	return name, nil
}

func validDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if len(desc) > maxDescriptionLen {
		return "", fault.Validationf("product description must be at most %d characters", maxDescriptionLen)
	}
	return desc, nil
}

func validPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fault.Validationf("product price must be greater than zero")
	}
	return nil
}

func validStock(stock int) error {
	if stock < 0 {
		return fault.Validationf("product stock must not be negative")
	}
	return nil
}
