package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type FavoriteService struct {
	gateway ports.FavoriteGateway
}

func NewFavoriteService(gateway ports.FavoriteGateway) *FavoriteService {
	return &FavoriteService{gateway: gateway}
}

func (s *FavoriteService) List(ctx context.Context, sess *entity.Session) ([]entity.Favorite, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	favs, err := s.gateway.ListFavorites(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, sess *entity.Session, productID int64) (bool, error) {
	if err := requireSession(sess); err != nil {
		return false, err
	}
	_, err := s.gateway.GetFavorite(ctx, sess.UserID, productID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, entity.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("get favorite: %w", err)
	}
}

// Toggle removes the favorite if present and adds it otherwise. It reports
// whether the product is a favorite afterwards. Losing an insert race to a
// concurrent toggle yields (true, ErrAlreadyFavorited), which callers may
// treat as success.
func (s *FavoriteService) Toggle(ctx context.Context, sess *entity.Session, productID int64) (bool, error) {
	if err := requireSession(sess); err != nil {
		return false, err
	}

	_, err := s.gateway.GetFavorite(ctx, sess.UserID, productID)
	switch {
	case err == nil:
		if err := s.gateway.DeleteFavorite(ctx, sess.UserID, productID); err != nil {
			return true, fmt.Errorf("delete favorite: %w", err)
		}
		return false, nil
	case errors.Is(err, entity.ErrNotFound):
		if err := s.insert(ctx, sess.UserID, productID); err != nil {
			if errors.Is(err, entity.ErrAlreadyFavorited) {
				return true, err
			}
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("get favorite: %w", err)
	}
}

// Add inserts a favorite; an existing one yields ErrAlreadyFavorited.
func (s *FavoriteService) Add(ctx context.Context, sess *entity.Session, productID int64) (*entity.Favorite, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	fav := &entity.Favorite{UserID: sess.UserID, ProductID: productID}
	if err := s.insertFavorite(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

// Remove is idempotent.
func (s *FavoriteService) Remove(ctx context.Context, sess *entity.Session, productID int64) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.gateway.DeleteFavorite(ctx, sess.UserID, productID); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) insert(ctx context.Context, userID string, productID int64) error {
	return s.insertFavorite(ctx, &entity.Favorite{UserID: userID, ProductID: productID})
}

func (s *FavoriteService) insertFavorite(ctx context.Context, fav *entity.Favorite) error {
	product, err := s.gateway.GetProduct(ctx, fav.ProductID)
	if err != nil {
		return fmt.Errorf("get product %d: %w", fav.ProductID, err)
	}
	if err := s.gateway.InsertFavorite(ctx, fav); err != nil {
		if errors.Is(err, entity.ErrAlreadyFavorited) {
			return err
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	fav.Product = product
	return nil
}
