package entity

import "time"

type Category struct {
	ID        int64
	Name      string
	Icon      string
	CreatedAt time.Time
}

type Product struct {
	ID                 int64
	Name               string
	Description        string
	Price              float64
	CategoryID         int64
	Stock              int
	ImageURL           string
	IsFlashSale        bool
	DiscountPercentage *float64
	CreatedAt          time.Time

	// Category is populated when the gateway joins the categories table.
	Category *Category
}

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID    int64
	FlashSaleOnly bool
}
