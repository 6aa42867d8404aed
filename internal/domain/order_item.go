package domain

// OrderItem represents a line item in an order. Price is a snapshot of the
// catalog price at order-creation time; it never tracks later catalog changes.
// Name is not persisted: it is joined in from the catalog on each detail read.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns the total price for this line item.
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
