package service

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
)

// faultyGateway injects errors into selected gateway calls. The compensating
// calls reject a done context the way a pgx pool does.
type faultyGateway struct {
	*memory.Gateway

	insertOrderErr      error
	insertOrderLinesErr error
	clearCartErr        error
	decrementErr        map[int64]error
	incrementErr        error
	updateStatusErr     error
}

func newFaultyGateway() *faultyGateway {
	return &faultyGateway{Gateway: memory.NewGateway(), decrementErr: map[int64]error{}}
}

func (g *faultyGateway) InsertOrder(ctx context.Context, o *entity.Order) error {
	if g.insertOrderErr != nil {
		return g.insertOrderErr
	}
	return g.Gateway.InsertOrder(ctx, o)
}

func (g *faultyGateway) InsertOrderLines(ctx context.Context, lines []entity.OrderLine) error {
	if g.insertOrderLinesErr != nil {
		return g.insertOrderLinesErr
	}
	return g.Gateway.InsertOrderLines(ctx, lines)
}

func (g *faultyGateway) ClearCart(ctx context.Context, userID string) error {
	if g.clearCartErr != nil {
		return g.clearCartErr
	}
	return g.Gateway.ClearCart(ctx, userID)
}

func (g *faultyGateway) DecrementStock(ctx context.Context, productID int64, qty int) error {
	if err := g.decrementErr[productID]; err != nil {
		return err
	}
	return g.Gateway.DecrementStock(ctx, productID, qty)
}

func (g *faultyGateway) IncrementStock(ctx context.Context, productID int64, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.incrementErr != nil {
		return g.incrementErr
	}
	return g.Gateway.IncrementStock(ctx, productID, qty)
}

func (g *faultyGateway) DeleteOrderLines(ctx context.Context, orderID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.Gateway.DeleteOrderLines(ctx, orderID)
}

func (g *faultyGateway) UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.updateStatusErr != nil {
		return g.updateStatusErr
	}
	return g.Gateway.UpdateOrderStatus(ctx, orderID, status)
}

// ctxCache rejects writes on a done context, like go-redis.
type ctxCache struct {
	cache.Cache
}

func (c ctxCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Cache.Set(ctx, key, value, ttl)
}

func (c ctxCache) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Cache.Del(ctx, key)
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []entity.Order
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order *entity.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, *order)
	return p.err
}

func session(userID string) *entity.Session {
	return &entity.Session{UserID: userID, Email: userID + "@example.com"}
}
