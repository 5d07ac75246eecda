package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{entity.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{entity.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{entity.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{entity.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{entity.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart"},
	{entity.ErrInsufficientStock, http.StatusUnprocessableEntity, "insufficient_stock"},
	{entity.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress"},
	{entity.ErrAlreadyFavorited, http.StatusConflict, "already_favorited"},
	{entity.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{entity.ErrOrderCreationFailed, http.StatusBadGateway, "order_creation_failed"},
	{entity.ErrOrderLineCreationFailed, http.StatusBadGateway, "order_line_creation_failed"},
	{entity.ErrStockUpdateFailed, http.StatusBadGateway, "stock_update_failed"},
	{entity.ErrCartClearFailed, http.StatusBadGateway, "cart_clear_failed"},
	{entity.ErrNotFound, http.StatusNotFound, "not_found"},
}

func statusFor(err error) (int, string) {
	// A checkout failure is classified by its step, not by its cause.
	var ce *entity.CheckoutError
	if errors.As(err, &ce) {
		for _, m := range errorMappings {
			if errors.Is(ce.Kind, m.target) {
				return m.status, m.code
			}
		}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}
	writeError(w, status, code, msg)
}
