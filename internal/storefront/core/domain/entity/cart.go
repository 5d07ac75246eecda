package entity

import "time"

type CartLine struct {
	ID        int64
	UserID    string
	ProductID int64
	Quantity  int
	CreatedAt time.Time

	// Product is the product row as last fetched; its Stock and Price are the
	// values checkout validates and freezes.
	Product *Product
}

func (l CartLine) Subtotal() float64 {
	if l.Product == nil {
		return 0
	}
	return l.Product.Price * float64(l.Quantity)
}

type Cart struct {
	UserID string
	Lines  []CartLine
}

func (c Cart) Total() float64 {
	return CartTotal(c.Lines)
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CartTotal sums price × quantity over the lines.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
