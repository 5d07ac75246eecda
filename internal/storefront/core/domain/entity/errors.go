package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrInvalidInput    = errors.New("invalid input")

	ErrInsufficientStock = errors.New("not enough stock available")
	ErrAlreadyFavorited  = errors.New("product is already in your favorites")

	ErrEmptyCart               = errors.New("your cart is empty")
	ErrOrderCreationFailed     = errors.New("order creation failed")
	ErrOrderLineCreationFailed = errors.New("order line creation failed")
	ErrStockUpdateFailed       = errors.New("stock update failed")
	ErrCartClearFailed         = errors.New("cart clear failed")
	ErrCheckoutInProgress      = errors.New("checkout already in progress for this idempotency key")

	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// CheckoutError reports which checkout step failed. Kind is one of the
// checkout sentinels above; Err is the underlying gateway error, if any.
type CheckoutError struct {
	Kind        error
	ProductName string
	OrderID     int64
	Err         error
}

func (e *CheckoutError) Error() string {
	msg := e.Kind.Error()
	if e.ProductName != "" {
		msg = fmt.Sprintf("%s for %s", msg, e.ProductName)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CheckoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InsufficientStock builds the validation error for a product whose stock
// cannot cover the requested quantity.
func InsufficientStock(productName string) *CheckoutError {
	return &CheckoutError{Kind: ErrInsufficientStock, ProductName: productName}
}
