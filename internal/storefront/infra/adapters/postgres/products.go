package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const productColumns = `
	p.id, p.name, p.description, p.price, COALESCE(p.category_id, 0), p.stock, p.image_url,
	p.is_flash_sale, p.discount_percentage, p.created_at,
	COALESCE(c.name, ''), COALESCE(c.icon, '')`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

// scanProduct scans prefix columns into prefix, then the productColumns.
func scanProduct(row pgx.Row, prefix ...any) (*entity.Product, error) {
	var p entity.Product
	var catName, catIcon string
	dest := append(prefix,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.Stock, &p.ImageURL,
		&p.IsFlashSale, &p.DiscountPercentage, &p.CreatedAt,
		&catName, &catIcon,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if p.CategoryID != 0 {
		p.Category = &entity.Category{ID: p.CategoryID, Name: catName, Icon: catIcon}
	}
	return &p, nil
}

func (g *Gateway) queryProducts(ctx context.Context, sql string, args ...any) ([]entity.Product, error) {
	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (g *Gateway) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	var where []string
	var args []any
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.FlashSaleOnly {
		where = append(where, "p.is_flash_sale")
	}

	q := `SELECT ` + productColumns + productFrom
	if len(where) > 0 {
		q += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\tORDER BY p.created_at DESC, p.id DESC"

	products, err := g.queryProducts(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (g *Gateway) SearchProducts(ctx context.Context, query string) ([]entity.Product, error) {
	q := `SELECT ` + productColumns + productFrom + `
	WHERE p.name ILIKE $1 OR p.description ILIKE $1
	ORDER BY p.name, p.id`

	products, err := g.queryProducts(ctx, q, "%"+likeEscaper.Replace(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (g *Gateway) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	q := `SELECT ` + productColumns + productFrom + `
	WHERE p.id = $1`

	p, err := scanProduct(g.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// DecrementStock only applies when enough stock remains, so concurrent
// checkouts can never drive stock negative.
func (g *Gateway) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := g.pool.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock of %d: %w", productID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := g.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("check product %d: %w", productID, err)
	}
	if !exists {
		return entity.ErrNotFound
	}
	return entity.ErrInsufficientStock
}

func (g *Gateway) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	tag, err := g.pool.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, productID, quantity)
	if err != nil {
		return fmt.Errorf("increment stock of %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (g *Gateway) ListCategories(ctx context.Context) ([]entity.Category, error) {
	rows, err := g.pool.Query(ctx, `SELECT id, name, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Category, 0)
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
