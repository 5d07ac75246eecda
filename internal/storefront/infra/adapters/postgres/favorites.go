package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (g *Gateway) ListFavorites(ctx context.Context, userID string) ([]entity.Favorite, error) {
	rows, err := g.pool.Query(ctx, `SELECT f.id, f.user_id, f.product_id, f.created_at,`+productColumns+`
	FROM favorites f
	JOIN products p ON p.id = f.product_id
	LEFT JOIN categories c ON c.id = p.category_id
	WHERE f.user_id = $1
	ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Favorite, 0)
	for rows.Next() {
		var f entity.Favorite
		p, err := scanProduct(rows, &f.ID, &f.UserID, &f.ProductID, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.Product = p
		out = append(out, f)
	}
	return out, rows.Err()
}

func (g *Gateway) GetFavorite(ctx context.Context, userID string, productID int64) (*entity.Favorite, error) {
	var f entity.Favorite
	err := g.pool.QueryRow(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM favorites
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(&f.ID, &f.UserID, &f.ProductID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &f, nil
}

// InsertFavorite maps the (user_id, product_id) unique violation to
// entity.ErrAlreadyFavorited.
func (g *Gateway) InsertFavorite(ctx context.Context, fav *entity.Favorite) error {
	err := g.pool.QueryRow(ctx, `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, fav.UserID, fav.ProductID).Scan(&fav.ID, &fav.CreatedAt)
	switch pgErrCode(err) {
	case "":
	case uniqueViolation:
		return entity.ErrAlreadyFavorited
	case foreignKeyViolation:
		return entity.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteFavorite(ctx context.Context, userID string, productID int64) error {
	if _, err := g.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}
