package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// ProductStore covers the products table. DecrementStock must be conditional:
// it fails with entity.ErrInsufficientStock instead of driving stock below zero.
type ProductStore interface {
	ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	SearchProducts(ctx context.Context, query string) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	IncrementStock(ctx context.Context, productID int64, quantity int) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
}

// CartStore covers cart_items. UpsertCartLine inserts or overwrites the line
// for (user_id, product_id); concurrent writers resolve last write wins.
type CartStore interface {
	ListCartLines(ctx context.Context, userID string) ([]entity.CartLine, error)
	GetCartLine(ctx context.Context, userID string, productID int64) (*entity.CartLine, error)
	GetCartLineByID(ctx context.Context, lineID int64) (*entity.CartLine, error)
	UpsertCartLine(ctx context.Context, line *entity.CartLine) error
	UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, lineID int64) error
	ClearCart(ctx context.Context, userID string) error
}

// FavoriteStore covers favorites. InsertFavorite fails with
// entity.ErrAlreadyFavorited on a (user_id, product_id) unique violation.
type FavoriteStore interface {
	ListFavorites(ctx context.Context, userID string) ([]entity.Favorite, error)
	GetFavorite(ctx context.Context, userID string, productID int64) (*entity.Favorite, error)
	InsertFavorite(ctx context.Context, fav *entity.Favorite) error
	DeleteFavorite(ctx context.Context, userID string, productID int64) error
}

type OrderStore interface {
	InsertOrder(ctx context.Context, order *entity.Order) error
	InsertOrderLines(ctx context.Context, lines []entity.OrderLine) error
	DeleteOrderLines(ctx context.Context, orderID int64) error
	UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error
	ListOrders(ctx context.Context, userID string) ([]entity.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*entity.Order, error)
}

type UserStore interface {
	InsertUser(ctx context.Context, user *entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

type CatalogGateway interface {
	ProductStore
	CategoryStore
}

type CartGateway interface {
	ProductStore
	CartStore
}

type FavoriteGateway interface {
	ProductStore
	FavoriteStore
}

// CheckoutGateway is the subset of tables the checkout sequence writes to.
type CheckoutGateway interface {
	ProductStore
	CartStore
	OrderStore
}

// Gateway is the full backend query interface.
type Gateway interface {
	ProductStore
	CategoryStore
	CartStore
	FavoriteStore
	OrderStore
	UserStore
}
