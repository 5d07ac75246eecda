package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

func (g *Gateway) InsertUser(ctx context.Context, user *entity.User) error {
	err := g.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if pgErrCode(err) == uniqueViolation {
		return entity.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (g *Gateway) getUser(ctx context.Context, where string, arg any) (*entity.User, error) {
	var u entity.User
	err := g.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE `+where, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (g *Gateway) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return g.getUser(ctx, "lower(email) = lower($1)", email)
}

func (g *Gateway) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return g.getUser(ctx, "id = $1", id)
}
