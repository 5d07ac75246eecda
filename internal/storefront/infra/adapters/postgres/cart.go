package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

const cartLineSelect = `SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,` + productColumns + `
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	LEFT JOIN categories c ON c.id = p.category_id`

func scanCartLine(row pgx.Row) (*entity.CartLine, error) {
	var l entity.CartLine
	p, err := scanProduct(row, &l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.Product = p
	return &l, nil
}

func (g *Gateway) ListCartLines(ctx context.Context, userID string) ([]entity.CartLine, error) {
	rows, err := g.pool.Query(ctx, cartLineSelect+`
	WHERE ci.user_id = $1
	ORDER BY ci.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	out := make([]entity.CartLine, 0)
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (g *Gateway) getCartLine(ctx context.Context, where string, args ...any) (*entity.CartLine, error) {
	l, err := scanCartLine(g.pool.QueryRow(ctx, cartLineSelect+"\n\tWHERE "+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	return l, nil
}

func (g *Gateway) GetCartLine(ctx context.Context, userID string, productID int64) (*entity.CartLine, error) {
	return g.getCartLine(ctx, "ci.user_id = $1 AND ci.product_id = $2", userID, productID)
}

func (g *Gateway) GetCartLineByID(ctx context.Context, lineID int64) (*entity.CartLine, error) {
	return g.getCartLine(ctx, "ci.id = $1", lineID)
}

func (g *Gateway) UpsertCartLine(ctx context.Context, line *entity.CartLine) error {
	err := g.pool.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id, created_at
	`, line.UserID, line.ProductID, line.Quantity).Scan(&line.ID, &line.CreatedAt)
	switch pgErrCode(err) {
	case "":
	case foreignKeyViolation:
		return entity.ErrNotFound
	case checkViolation:
		return entity.ErrInvalidQuantity
	}
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (g *Gateway) UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	tag, err := g.pool.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, lineID, quantity)
	if pgErrCode(err) == checkViolation {
		return entity.ErrInvalidQuantity
	}
	if err != nil {
		return fmt.Errorf("update cart line %d: %w", lineID, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (g *Gateway) DeleteCartLine(ctx context.Context, lineID int64) error {
	if _, err := g.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("delete cart line %d: %w", lineID, err)
	}
	return nil
}

func (g *Gateway) ClearCart(ctx context.Context, userID string) error {
	if _, err := g.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
