package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type SessionProvider interface {
	SignUp(ctx context.Context, email, password string) (*entity.Session, error)
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	SignOut(ctx context.Context, sess *entity.Session) error
	CurrentUser(ctx context.Context, token string) (*entity.Session, error)
}
