package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// CartService mutates cart lines without ever exceeding product stock.
type CartService struct {
	gateway ports.CartGateway
}

func NewCartService(gateway ports.CartGateway) *CartService {
	return &CartService{gateway: gateway}
}

func (s *CartService) GetCart(ctx context.Context, sess *entity.Session) (*entity.Cart, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	lines, err := s.gateway.ListCartLines(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	return &entity.Cart{UserID: sess.UserID, Lines: lines}, nil
}

// AddOrIncrement adds delta to the user's line for productID, creating the
// line at max(1, delta) if absent. A resulting quantity below 1 removes the
// line, in which case the returned line is nil.
func (s *CartService) AddOrIncrement(ctx context.Context, sess *entity.Session, productID int64, delta int) (*entity.CartLine, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	product, err := s.gateway.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}

	existing, err := s.gateway.GetCartLine(ctx, sess.UserID, productID)
	switch {
	case err == nil:
		qty := existing.Quantity + delta
		if qty < 1 {
			if err := s.gateway.DeleteCartLine(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("delete cart line %d: %w", existing.ID, err)
			}
			return nil, nil
		}
		if qty > product.Stock {
			return nil, entity.InsufficientStock(product.Name)
		}
		if err := s.gateway.UpdateCartLineQuantity(ctx, existing.ID, qty); err != nil {
			return nil, fmt.Errorf("update cart line %d: %w", existing.ID, err)
		}
		existing.Quantity = qty
		existing.Product = product
		return existing, nil

	case errors.Is(err, entity.ErrNotFound):
		qty := max(1, delta)
		if qty > product.Stock {
			return nil, entity.InsufficientStock(product.Name)
		}
		line := &entity.CartLine{UserID: sess.UserID, ProductID: productID, Quantity: qty}
		if err := s.gateway.UpsertCartLine(ctx, line); err != nil {
			return nil, fmt.Errorf("insert cart line: %w", err)
		}
		line.Product = product
		return line, nil

	default:
		return nil, fmt.Errorf("get cart line: %w", err)
	}
}

// SetQuantity sets an owned line to n, removing it when n < 1.
func (s *CartService) SetQuantity(ctx context.Context, sess *entity.Session, lineID int64, n int) (*entity.CartLine, error) {
	line, err := s.ownedLine(ctx, sess, lineID)
	if err != nil {
		return nil, err
	}

	if n < 1 {
		if err := s.gateway.DeleteCartLine(ctx, lineID); err != nil {
			return nil, fmt.Errorf("delete cart line %d: %w", lineID, err)
		}
		return nil, nil
	}

	product, err := s.gateway.GetProduct(ctx, line.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", line.ProductID, err)
	}
	if n > product.Stock {
		return nil, entity.InsufficientStock(product.Name)
	}

	if err := s.gateway.UpdateCartLineQuantity(ctx, lineID, n); err != nil {
		return nil, fmt.Errorf("update cart line %d: %w", lineID, err)
	}
	line.Quantity = n
	line.Product = product
	return line, nil
}

func (s *CartService) RemoveLine(ctx context.Context, sess *entity.Session, lineID int64) error {
	if _, err := s.ownedLine(ctx, sess, lineID); err != nil {
		return err
	}
	if err := s.gateway.DeleteCartLine(ctx, lineID); err != nil {
		return fmt.Errorf("delete cart line %d: %w", lineID, err)
	}
	return nil
}

// ownedLine hides lines of other users behind ErrNotFound.
func (s *CartService) ownedLine(ctx context.Context, sess *entity.Session, lineID int64) (*entity.CartLine, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	line, err := s.gateway.GetCartLineByID(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("cart line %d: %w", lineID, err)
	}
	if line.UserID != sess.UserID {
		return nil, fmt.Errorf("cart line %d: %w", lineID, entity.ErrNotFound)
	}
	return line, nil
}
