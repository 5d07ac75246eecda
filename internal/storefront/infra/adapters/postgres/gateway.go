// Package postgres implements the storefront gateway on top of pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// DBPool matches the methods of *pgxpool.Pool the gateway uses, so tests can
// substitute pgxmock.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ ports.Gateway = (*Gateway)(nil)

type Gateway struct {
	pool DBPool
}

func NewGateway(pool DBPool) *Gateway {
	return &Gateway{pool: pool}
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
