package domain

import "time"

// Order status constants.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Order represents a purchase order with its line items.
type Order struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items,omitempty"`
	TotalAmount int64       `json:"total_amount"`
	TotalItems  int         `json:"total_items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// IsValidStatus checks if a status string is valid.
// Any valid status may replace any other; there is no transition graph.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
