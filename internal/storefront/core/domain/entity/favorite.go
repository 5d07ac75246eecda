package entity

import "time"

type Favorite struct {
	ID        int64
	UserID    string
	ProductID int64
	CreatedAt time.Time

	Product *Product
}
