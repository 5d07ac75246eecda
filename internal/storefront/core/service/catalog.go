package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// CatalogService serves the browse and search screens. It needs no session.
type CatalogService struct {
	gateway ports.CatalogGateway
}

func NewCatalogService(gateway ports.CatalogGateway) *CatalogService {
	return &CatalogService{gateway: gateway}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	cats, err := s.gateway.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	if filter.CategoryID < 0 {
		return nil, fmt.Errorf("category id %d: %w", filter.CategoryID, entity.ErrInvalidInput)
	}
	products, err := s.gateway.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := s.gateway.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Search matches query against product names and descriptions. A blank
// query returns no results without touching the gateway.
func (s *CatalogService) Search(ctx context.Context, query string) ([]entity.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Product{}, nil
	}
	products, err := s.gateway.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}
