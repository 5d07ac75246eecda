package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront/internal/coordinator"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/constants"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const (
	DefaultClearCartDelay = time.Second
	DefaultIdempotencyTTL = 24 * time.Hour

	// pendingClaimTTL bounds how long a crashed checkout keeps its key locked,
	// on top of the clear-cart delay the saga sleeps through.
	pendingClaimTTL = 2 * time.Minute
	pendingMarker   = "pending"
)

type CheckoutOptions struct {
	// IdempotencyKey makes retries of the same checkout return the first
	// order instead of placing a new one. Ignored without a cache.
	IdempotencyKey string
}

type CheckoutResult struct {
	OrderID    int64
	CheckoutID string
	Total      float64
	Replayed   bool
	Order      *entity.Order
}

// CheckoutService converts a cart snapshot into an order. The writes run as a
// saga: a failing step compensates every step that completed before it.
type CheckoutService struct {
	gateway        ports.CheckoutGateway
	sagaLog        sagalog.Repository
	cache          cache.Cache
	publisher      ports.EventPublisher
	clearDelay     time.Duration
	idempotencyTTL time.Duration
	logger         *slog.Logger
	newID          func() string
}

type CheckoutOption func(*CheckoutService)

func WithSagaLog(repo sagalog.Repository) CheckoutOption {
	return func(s *CheckoutService) { s.sagaLog = repo }
}

func WithIdempotencyCache(c cache.Cache, ttl time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.cache = c
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

func WithEventPublisher(p ports.EventPublisher) CheckoutOption {
	return func(s *CheckoutService) { s.publisher = p }
}

// WithClearCartDelay sets the pause before the cart is cleared. Zero disables it.
func WithClearCartDelay(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) { s.clearDelay = d }
}

func WithCheckoutLogger(l *slog.Logger) CheckoutOption {
	return func(s *CheckoutService) { s.logger = l }
}

func NewCheckoutService(gateway ports.CheckoutGateway, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		gateway:        gateway,
		clearDelay:     DefaultClearCartDelay,
		idempotencyTTL: DefaultIdempotencyTTL,
		logger:         slog.Default(),
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckoutCart loads the session user's current cart and checks it out.
func (s *CheckoutService) CheckoutCart(ctx context.Context, sess *entity.Session, opts CheckoutOptions) (*CheckoutResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	lines, err := s.gateway.ListCartLines(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.Checkout(ctx, sess, lines, opts)
}

// Checkout places an order for lines. Stock and price are taken from the
// Product attached to each line.
func (s *CheckoutService) Checkout(ctx context.Context, sess *entity.Session, lines []entity.CartLine, opts CheckoutOptions) (*CheckoutResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	claim, replay, err := s.claim(ctx, sess.UserID, opts.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	result, err := s.run(ctx, sess, lines)
	// The claim must be settled even when ctx was cancelled mid-checkout.
	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		claim.release(settleCtx)
		return nil, err
	}
	claim.complete(settleCtx, result)

	s.publish(ctx, result.Order)
	return result, nil
}

func (s *CheckoutService) run(ctx context.Context, sess *entity.Session, lines []entity.CartLine) (*CheckoutResult, error) {
	if err := validateSnapshot(lines); err != nil {
		return nil, err
	}

	checkoutID := s.newID()
	order := &entity.Order{
		UserID: sess.UserID,
		Total:  entity.CartTotal(lines),
		Status: entity.StatusProcessing,
	}
	logger := s.logger.With("checkout_id", checkoutID, "user_id", sess.UserID)

	saga := coordinator.NewOrchestrator(checkoutID, s.steps(sess.UserID, order, lines), s.sagaLog,
		coordinator.WithPayload(snapshotPayload(sess.UserID, lines)),
		coordinator.WithLogger(logger),
	)
	if err := saga.Start(ctx); err != nil {
		logger.WarnContext(ctx, "checkout failed", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "checkout completed", "order_id", order.ID, "total", order.Total)
	return &CheckoutResult{
		OrderID:    order.ID,
		CheckoutID: checkoutID,
		Total:      order.Total,
		Order:      order,
	}, nil
}

func validateSnapshot(lines []entity.CartLine) error {
	if len(lines) == 0 {
		return &entity.CheckoutError{Kind: entity.ErrEmptyCart}
	}
	for _, l := range lines {
		if l.Product == nil {
			return fmt.Errorf("cart line for product %d: %w", l.ProductID, entity.ErrNotFound)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("cart line for %s: %w", l.Product.Name, entity.ErrInvalidQuantity)
		}
		if l.Quantity > l.Product.Stock {
			return entity.InsufficientStock(l.Product.Name)
		}
	}
	return nil
}

// steps builds the saga. order is filled in by the first step and read by
// the later ones.
func (s *CheckoutService) steps(userID string, order *entity.Order, lines []entity.CartLine) []coordinator.Step {
	steps := []coordinator.Step{
		coordinator.NewStep("create_order",
			func(ctx context.Context) error {
				if err := s.gateway.InsertOrder(ctx, order); err != nil {
					return &entity.CheckoutError{Kind: entity.ErrOrderCreationFailed, Err: err}
				}
				return nil
			},
			func(ctx context.Context) error {
				return s.gateway.UpdateOrderStatus(ctx, order.ID, entity.StatusCancelled)
			},
		),
		coordinator.NewStep("create_order_lines",
			func(ctx context.Context) error {
				order.Items = orderLines(order.ID, lines)
				if err := s.gateway.InsertOrderLines(ctx, order.Items); err != nil {
					return &entity.CheckoutError{Kind: entity.ErrOrderLineCreationFailed, OrderID: order.ID, Err: err}
				}
				return nil
			},
			func(ctx context.Context) error {
				return s.gateway.DeleteOrderLines(ctx, order.ID)
			},
		),
	}

	for _, l := range lines {
		steps = append(steps, coordinator.NewStep("decrement_stock:"+strconv.FormatInt(l.ProductID, 10),
			func(ctx context.Context) error {
				err := s.gateway.DecrementStock(ctx, l.ProductID, l.Quantity)
				switch {
				case err == nil:
					return nil
				case errors.Is(err, entity.ErrInsufficientStock):
					return &entity.CheckoutError{Kind: entity.ErrInsufficientStock, ProductName: l.Product.Name, OrderID: order.ID}
				default:
					return &entity.CheckoutError{Kind: entity.ErrStockUpdateFailed, ProductName: l.Product.Name, OrderID: order.ID, Err: err}
				}
			},
			func(ctx context.Context) error {
				return s.gateway.IncrementStock(ctx, l.ProductID, l.Quantity)
			},
		))
	}

	return append(steps, coordinator.NewStep("clear_cart",
		func(ctx context.Context) error {
			if err := sleepCtx(ctx, s.clearDelay); err != nil {
				return &entity.CheckoutError{Kind: entity.ErrCartClearFailed, OrderID: order.ID, Err: err}
			}
			if err := s.gateway.ClearCart(ctx, userID); err != nil {
				return &entity.CheckoutError{Kind: entity.ErrCartClearFailed, OrderID: order.ID, Err: err}
			}
			return nil
		},
		nil,
	))
}

func orderLines(orderID int64, lines []entity.CartLine) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.OrderLine{
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
			Product:   l.Product,
		})
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type snapshotLine struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func snapshotPayload(userID string, lines []entity.CartLine) string {
	payload := struct {
		UserID string         `json:"user_id"`
		Lines  []snapshotLine `json:"lines"`
	}{UserID: userID}
	for _, l := range lines {
		payload.Lines = append(payload.Lines, snapshotLine{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Product.Price})
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(b)
}

func (s *CheckoutService) publish(ctx context.Context, order *entity.Order) {
	if s.publisher == nil || order == nil {
		return
	}
	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "publish order placed failed", "order_id", order.ID, "error", err)
	}
}

// idempotencyClaim is the cache entry a checkout holds while it runs.
// The zero value is a no-op claim.
type idempotencyClaim struct {
	s   *CheckoutService
	key string
}

// claim reserves the idempotency key. It returns a replayed result when the
// key already maps to an order.
func (s *CheckoutService) claim(ctx context.Context, userID, idemKey string) (idempotencyClaim, *CheckoutResult, error) {
	if idemKey == "" || s.cache == nil {
		return idempotencyClaim{}, nil, nil
	}
	key := s.cache.GenerateKey(constants.CacheOpCheckout, userID+":"+idemKey)

	ok, err := s.cache.SetNX(ctx, key, pendingMarker, s.claimTTL())
	if err != nil {
		s.logger.WarnContext(ctx, "idempotency cache unavailable, continuing without key", "error", err)
		return idempotencyClaim{}, nil, nil
	}
	if ok {
		return idempotencyClaim{s: s, key: key}, nil, nil
	}

	val, err := s.cache.Get(ctx, key)
	if err != nil {
		return idempotencyClaim{}, nil, fmt.Errorf("read idempotency key: %w", err)
	}
	// completed claims hold "<order id>:<checkout id>"
	rawOrderID, checkoutID, _ := strings.Cut(val, ":")
	orderID, err := strconv.ParseInt(rawOrderID, 10, 64)
	if err != nil {
		// pending, or expired between SetNX and Get
		return idempotencyClaim{}, nil, entity.ErrCheckoutInProgress
	}

	order, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return idempotencyClaim{}, nil, fmt.Errorf("load replayed order %d: %w", orderID, err)
	}
	s.logger.InfoContext(ctx, "checkout replayed", "order_id", orderID, "user_id", userID)
	return idempotencyClaim{}, &CheckoutResult{
		OrderID:    order.ID,
		CheckoutID: checkoutID,
		Total:      order.Total,
		Replayed:   true,
		Order:      order,
	}, nil
}

// claimTTL outlives the longest successful run, so a retry cannot race a
// checkout that is still sleeping before it clears the cart.
func (s *CheckoutService) claimTTL() time.Duration {
	return s.clearDelay + coordinator.DefaultCompensationTimeout + pendingClaimTTL
}

func (c idempotencyClaim) release(ctx context.Context) {
	if c.s == nil {
		return
	}
	if err := c.s.cache.Del(ctx, c.key); err != nil {
		c.s.logger.ErrorContext(ctx, "release idempotency key failed", "key", c.key, "error", err)
	}
}

func (c idempotencyClaim) complete(ctx context.Context, result *CheckoutResult) {
	if c.s == nil {
		return
	}
	val := strconv.FormatInt(result.OrderID, 10) + ":" + result.CheckoutID
	if err := c.s.cache.Set(ctx, c.key, val, c.s.idempotencyTTL); err != nil {
		c.s.logger.ErrorContext(ctx, "store idempotency key failed", "key", c.key, "error", err)
	}
}
