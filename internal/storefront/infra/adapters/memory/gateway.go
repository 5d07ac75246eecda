// Package memory is an in-process Gateway that enforces the same unique and
// check constraints as the Postgres schema. It backs local development when
// no database is configured, and the service tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

var _ ports.Gateway = (*Gateway)(nil)

type Gateway struct {
	mu sync.RWMutex

	categories map[int64]entity.Category
	products   map[int64]entity.Product
	cart       map[int64]entity.CartLine
	favorites  map[int64]entity.Favorite
	orders     map[int64]entity.Order
	orderLines map[int64]entity.OrderLine
	users      map[string]entity.User

	seq int64
	now func() time.Time
}

func NewGateway() *Gateway {
	return &Gateway{
		categories: make(map[int64]entity.Category),
		products:   make(map[int64]entity.Product),
		cart:       make(map[int64]entity.CartLine),
		favorites:  make(map[int64]entity.Favorite),
		orders:     make(map[int64]entity.Order),
		orderLines: make(map[int64]entity.OrderLine),
		users:      make(map[string]entity.User),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// nextID must be called with mu held. Timestamps advance with the id so
// "newest first" orderings are stable.
func (g *Gateway) nextID() (int64, time.Time) {
	g.seq++
	return g.seq, g.now().Add(time.Duration(g.seq) * time.Microsecond)
}

// AddCategory stores c and returns it with its assigned id.
func (g *Gateway) AddCategory(c entity.Category) entity.Category {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.ID, c.CreatedAt = g.nextID()
	g.categories[c.ID] = c
	return c
}

// AddProduct stores p and returns it with its assigned id.
func (g *Gateway) AddProduct(p entity.Product) entity.Product {
	g.mu.Lock()
	defer g.mu.Unlock()
	p.ID, p.CreatedAt = g.nextID()
	p.Category = nil
	g.products[p.ID] = p
	return p
}

// product returns a detached copy with its category joined. mu must be held.
func (g *Gateway) product(id int64) (*entity.Product, bool) {
	p, ok := g.products[id]
	if !ok {
		return nil, false
	}
	if c, ok := g.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	if p.DiscountPercentage != nil {
		d := *p.DiscountPercentage
		p.DiscountPercentage = &d
	}
	return &p, true
}

func (g *Gateway) ListCategories(_ context.Context) ([]entity.Category, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]entity.Category, 0, len(g.categories))
	for _, c := range g.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b entity.Category) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (g *Gateway) ListProducts(_ context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]entity.Product, 0)
	for id, p := range g.products {
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.FlashSaleOnly && !p.IsFlashSale {
			continue
		}
		joined, _ := g.product(id)
		out = append(out, *joined)
	}
	slices.SortFunc(out, func(a, b entity.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (g *Gateway) SearchProducts(_ context.Context, query string) ([]entity.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	q := strings.ToLower(query)
	out := make([]entity.Product, 0)
	for id, p := range g.products {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		joined, _ := g.product(id)
		out = append(out, *joined)
	}
	slices.SortFunc(out, func(a, b entity.Product) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (g *Gateway) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.product(id)
	if !ok {
		return nil, entity.ErrNotFound
	}
	return p, nil
}

func (g *Gateway) DecrementStock(_ context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return entity.ErrInvalidQuantity
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.products[productID]
	if !ok {
		return entity.ErrNotFound
	}
	if p.Stock < quantity {
		return entity.ErrInsufficientStock
	}
	p.Stock -= quantity
	g.products[productID] = p
	return nil
}

func (g *Gateway) IncrementStock(_ context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return entity.ErrInvalidQuantity
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.products[productID]
	if !ok {
		return entity.ErrNotFound
	}
	p.Stock += quantity
	g.products[productID] = p
	return nil
}

// cartLine joins the product. mu must be held.
func (g *Gateway) cartLine(l entity.CartLine) entity.CartLine {
	l.Product, _ = g.product(l.ProductID)
	return l
}

func (g *Gateway) ListCartLines(_ context.Context, userID string) ([]entity.CartLine, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]entity.CartLine, 0)
	for _, l := range g.cart {
		if l.UserID == userID {
			out = append(out, g.cartLine(l))
		}
	}
	slices.SortFunc(out, func(a, b entity.CartLine) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (g *Gateway) GetCartLine(_ context.Context, userID string, productID int64) (*entity.CartLine, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, l := range g.cart {
		if l.UserID == userID && l.ProductID == productID {
			joined := g.cartLine(l)
			return &joined, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (g *Gateway) GetCartLineByID(_ context.Context, lineID int64) (*entity.CartLine, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	l, ok := g.cart[lineID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	joined := g.cartLine(l)
	return &joined, nil
}

func (g *Gateway) UpsertCartLine(_ context.Context, line *entity.CartLine) error {
	if line.Quantity < 1 {
		return entity.ErrInvalidQuantity
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.products[line.ProductID]; !ok {
		return entity.ErrNotFound
	}
	for id, l := range g.cart {
		if l.UserID == line.UserID && l.ProductID == line.ProductID {
			l.Quantity = line.Quantity
			g.cart[id] = l
			line.ID, line.CreatedAt = l.ID, l.CreatedAt
			return nil
		}
	}
	line.ID, line.CreatedAt = g.nextID()
	stored := *line
	stored.Product = nil
	g.cart[line.ID] = stored
	return nil
}

func (g *Gateway) UpdateCartLineQuantity(_ context.Context, lineID int64, quantity int) error {
	if quantity < 1 {
		return entity.ErrInvalidQuantity
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.cart[lineID]
	if !ok {
		return entity.ErrNotFound
	}
	l.Quantity = quantity
	g.cart[lineID] = l
	return nil
}

func (g *Gateway) DeleteCartLine(_ context.Context, lineID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cart, lineID)
	return nil
}

func (g *Gateway) ClearCart(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, l := range g.cart {
		if l.UserID == userID {
			delete(g.cart, id)
		}
	}
	return nil
}

func (g *Gateway) ListFavorites(_ context.Context, userID string) ([]entity.Favorite, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]entity.Favorite, 0)
	for _, f := range g.favorites {
		if f.UserID == userID {
			f.Product, _ = g.product(f.ProductID)
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b entity.Favorite) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (g *Gateway) GetFavorite(_ context.Context, userID string, productID int64) (*entity.Favorite, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, f := range g.favorites {
		if f.UserID == userID && f.ProductID == productID {
			return &f, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (g *Gateway) InsertFavorite(_ context.Context, fav *entity.Favorite) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.products[fav.ProductID]; !ok {
		return entity.ErrNotFound
	}
	for _, f := range g.favorites {
		if f.UserID == fav.UserID && f.ProductID == fav.ProductID {
			return entity.ErrAlreadyFavorited
		}
	}
	fav.ID, fav.CreatedAt = g.nextID()
	stored := *fav
	stored.Product = nil
	g.favorites[fav.ID] = stored
	return nil
}

func (g *Gateway) DeleteFavorite(_ context.Context, userID string, productID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, f := range g.favorites {
		if f.UserID == userID && f.ProductID == productID {
			delete(g.favorites, id)
		}
	}
	return nil
}

func (g *Gateway) InsertOrder(_ context.Context, order *entity.Order) error {
	if order.Status == "" {
		order.Status = entity.StatusPending
	}
	if !order.Status.Valid() || order.Total < 0 {
		return entity.ErrInvalidInput
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	order.ID, order.CreatedAt = g.nextID()
	stored := *order
	stored.Items = nil
	g.orders[order.ID] = stored
	return nil
}

func (g *Gateway) InsertOrderLines(_ context.Context, lines []entity.OrderLine) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	// all-or-nothing, like a single multi-row INSERT
	for _, l := range lines {
		if _, ok := g.orders[l.OrderID]; !ok {
			return entity.ErrNotFound
		}
		if _, ok := g.products[l.ProductID]; !ok {
			return entity.ErrNotFound
		}
		if l.Quantity < 1 {
			return entity.ErrInvalidQuantity
		}
	}
	for i := range lines {
		lines[i].ID, lines[i].CreatedAt = g.nextID()
		stored := lines[i]
		stored.Product = nil
		g.orderLines[stored.ID] = stored
	}
	return nil
}

func (g *Gateway) DeleteOrderLines(_ context.Context, orderID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, l := range g.orderLines {
		if l.OrderID == orderID {
			delete(g.orderLines, id)
		}
	}
	return nil
}

func (g *Gateway) UpdateOrderStatus(_ context.Context, orderID int64, status entity.OrderStatus) error {
	if !status.Valid() {
		return entity.ErrInvalidInput
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.orders[orderID]
	if !ok {
		return entity.ErrNotFound
	}
	o.Status = status
	g.orders[orderID] = o
	return nil
}

// order joins lines and their products. mu must be held.
func (g *Gateway) order(o entity.Order) entity.Order {
	o.Items = make([]entity.OrderLine, 0)
	for _, l := range g.orderLines {
		if l.OrderID == o.ID {
			l.Product, _ = g.product(l.ProductID)
			o.Items = append(o.Items, l)
		}
	}
	slices.SortFunc(o.Items, func(a, b entity.OrderLine) int { return cmp.Compare(a.ID, b.ID) })
	return o
}

func (g *Gateway) ListOrders(_ context.Context, userID string) ([]entity.Order, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]entity.Order, 0)
	for _, o := range g.orders {
		if o.UserID == userID {
			out = append(out, g.order(o))
		}
	}
	slices.SortFunc(out, func(a, b entity.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (g *Gateway) GetOrder(_ context.Context, orderID int64) (*entity.Order, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	o, ok := g.orders[orderID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	joined := g.order(o)
	return &joined, nil
}

func (g *Gateway) InsertUser(_ context.Context, user *entity.User) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, u := range g.users {
		if strings.EqualFold(u.Email, user.Email) {
			return entity.ErrEmailTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = g.now()
	}
	g.users[user.ID] = *user
	return nil
}

func (g *Gateway) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, u := range g.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (g *Gateway) GetUser(_ context.Context, id string) (*entity.User, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	u, ok := g.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &u, nil
}
