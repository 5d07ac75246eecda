package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (g *Gateway) InsertOrder(ctx context.Context, order *entity.Order) error {
	if order.Status == "" {
		order.Status = entity.StatusPending
	}
	err := g.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, order.UserID, order.Total, string(order.Status)).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertOrderLines writes all lines in one statement so they land together
// or not at all.
func (g *Gateway) InsertOrderLines(ctx context.Context, lines []entity.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ")
	args := make([]any, 0, len(lines)*4)
	for i, l := range lines {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, l.OrderID, l.ProductID, l.Quantity, l.Price)
	}

	tag, err := g.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	if int(tag.RowsAffected()) != len(lines) {
		return fmt.Errorf("insert order lines: wrote %d of %d rows", tag.RowsAffected(), len(lines))
	}
	return nil
}

func (g *Gateway) DeleteOrderLines(ctx context.Context, orderID int64) error {
	if _, err := g.pool.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete order lines of %d: %w", orderID, err)
	}
	return nil
}

func (g *Gateway) UpdateOrderStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	if !status.Valid() {
		return entity.ErrInvalidInput
	}
	tag, err := g.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, string(status))
	if err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (g *Gateway) ListOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	rows, err := g.pool.Query(ctx, `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]entity.Order, 0)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	lines, err := g.orderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = lines[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []entity.OrderLine{}
		}
	}
	return orders, nil
}

func (g *Gateway) GetOrder(ctx context.Context, orderID int64) (*entity.Order, error) {
	var o entity.Order
	err := g.pool.QueryRow(ctx, `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	lines, err := g.orderLines(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	o.Items = lines[orderID]
	if o.Items == nil {
		o.Items = []entity.OrderLine{}
	}
	return &o, nil
}

// orderLines loads the lines of the given orders with their products, keyed
// by order id.
func (g *Gateway) orderLines(ctx context.Context, orderIDs []int64) (map[int64][]entity.OrderLine, error) {
	rows, err := g.pool.Query(ctx, `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.created_at,`+productColumns+`
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	LEFT JOIN categories c ON c.id = p.category_id
	WHERE oi.order_id = ANY($1)
	ORDER BY oi.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]entity.OrderLine, len(orderIDs))
	for rows.Next() {
		var l entity.OrderLine
		p, err := scanProduct(rows, &l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.Price, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		l.Product = p
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}
