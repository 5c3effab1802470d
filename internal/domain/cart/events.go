package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventCartCheckedOut = "CartCheckedOut"

type CheckedOutItem struct {
	Model    string          `json:"model"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CartCheckedOut is published after a checkout commits. Consumers (the
// notifier) use it to send order confirmations; it is informational only and
// never part of the commit.
type CartCheckedOut struct {
	EventType string           `json:"event_type"`
	CartID    int64            `json:"cart_id"`
	Customer  string           `json:"customer"`
	Total     decimal.Decimal  `json:"total"`
	Items     []CheckedOutItem `json:"items"`
	PaidAt    time.Time        `json:"paid_at"`
}
