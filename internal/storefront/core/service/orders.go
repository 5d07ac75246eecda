package service

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type OrderService struct {
	gateway ports.OrderStore
}

func NewOrderService(gateway ports.OrderStore) *OrderService {
	return &OrderService{gateway: gateway}
}

// List returns the session user's orders newest first, with their lines.
func (s *OrderService) List(ctx context.Context, sess *entity.Session) ([]entity.Order, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	orders, err := s.gateway.ListOrders(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, sess *entity.Session, orderID int64) (*entity.Order, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	order, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	if order.UserID != sess.UserID {
		return nil, fmt.Errorf("get order %d: %w", orderID, entity.ErrNotFound)
	}
	return order, nil
}
