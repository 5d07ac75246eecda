package entity

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID        int64
	UserID    string
	Total     float64
	Status    OrderStatus
	CreatedAt time.Time
	Items     []OrderLine
}

// OrderLine freezes the quantity and unit price at the moment the order was
// placed, so later price changes never rewrite order history.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     float64
	CreatedAt time.Time

	Product *Product
}

func (i OrderLine) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}
