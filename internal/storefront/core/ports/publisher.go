package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// EventPublisher announces completed checkouts to downstream consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *entity.Order) error
}
