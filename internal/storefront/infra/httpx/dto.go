package httpx

import (
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Token     string `json:"token,omitempty"`
	ExpiresAt string `json:"expires_at"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type ProductResponse struct {
	ID                 int64             `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	Price              float64           `json:"price"`
	CategoryID         int64             `json:"category_id,omitempty"`
	Category           *CategoryResponse `json:"category,omitempty"`
	Stock              int               `json:"stock"`
	ImageURL           string            `json:"image_url,omitempty"`
	IsFlashSale        bool              `json:"is_flash_sale"`
	DiscountPercentage *float64          `json:"discount_percentage,omitempty"`
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartLineResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Subtotal  float64          `json:"subtotal"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total float64            `json:"total"`
}

type CheckoutResponse struct {
	OrderID    int64         `json:"order_id"`
	CheckoutID string        `json:"checkout_id,omitempty"`
	Total      float64       `json:"total"`
	Replayed   bool          `json:"replayed"`
	Order      OrderResponse `json:"order"`
}

type OrderResponse struct {
	ID        int64               `json:"id"`
	Status    string              `json:"status"`
	Total     float64             `json:"total"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt string              `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type FavoriteRequest struct {
	ProductID int64 `json:"product_id"`
}

type FavoriteResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"product_id"`
	Product   *ProductResponse `json:"product,omitempty"`
	CreatedAt string           `json:"created_at"`
}

type ToggleFavoriteResponse struct {
	ProductID  int64 `json:"product_id"`
	IsFavorite bool  `json:"is_favorite"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func mapSession(s *entity.Session, withToken bool) SessionResponse {
	resp := SessionResponse{
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: formatTime(s.ExpiresAt),
	}
	if withToken {
		resp.Token = s.Token
	}
	return resp
}

func mapCategory(c entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon}
}

func mapProduct(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	resp := &ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		CategoryID:         p.CategoryID,
		Stock:              p.Stock,
		ImageURL:           p.ImageURL,
		IsFlashSale:        p.IsFlashSale,
		DiscountPercentage: p.DiscountPercentage,
	}
	if p.Category != nil {
		c := mapCategory(*p.Category)
		resp.Category = &c
	}
	return resp
}

func mapProducts(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = *mapProduct(&products[i])
	}
	return out
}

func mapCartLine(l *entity.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:        l.ID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Subtotal:  l.Subtotal(),
		Product:   mapProduct(l.Product),
	}
}

func mapCart(c *entity.Cart) CartResponse {
	items := make([]CartLineResponse, len(c.Lines))
	for i := range c.Lines {
		items[i] = mapCartLine(&c.Lines[i])
	}
	return CartResponse{Items: items, Total: c.Total()}
}

func mapOrder(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
		if it.Product != nil {
			items[i].Name = it.Product.Name
		}
	}
	return OrderResponse{
		ID:        o.ID,
		Status:    string(o.Status),
		Total:     o.Total,
		Items:     items,
		CreatedAt: formatTime(o.CreatedAt),
	}
}

func mapFavorite(f entity.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:        f.ID,
		ProductID: f.ProductID,
		Product:   mapProduct(f.Product),
		CreatedAt: formatTime(f.CreatedAt),
	}
}
