package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrEmptyStock           = errors.New("product out of stock")
	ErrLowStock             = errors.New("insufficient stock for requested quantity")
	ErrInvalidCategory      = errors.New("unknown product category")
	ErrInvalidPrice         = errors.New("selling price must not be negative")
	ErrInvalidArrivalDate   = errors.New("arrival date must not be in the future")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
)

// Category is the fixed set of product categories.
type Category string

const (
	CategorySmartphone Category = "Smartphone"
	CategoryLaptop     Category = "Laptop"
	CategoryAppliance  Category = "Appliance"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySmartphone, CategoryLaptop, CategoryAppliance:
		return true
	}
	return false
}

// Product is a catalog entry. Model is the unique identifier; Quantity is the
// live stock count and never goes below zero.
type Product struct {
	Model        string          `json:"model"`
	Category     Category        `json:"category"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	ArrivalDate  time.Time       `json:"arrivalDate"`
	Details      string          `json:"details,omitempty"`
	Quantity     int             `json:"quantity"`
}
