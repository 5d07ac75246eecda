package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/service"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

// Handler exposes the storefront services over JSON.
type Handler struct {
	sessions  ports.SessionProvider
	catalog   *service.CatalogService
	cart      *service.CartService
	favorites *service.FavoriteService
	orders    *service.OrderService
	checkout  *service.CheckoutService
}

func NewHandler(
	sessions ports.SessionProvider,
	catalog *service.CatalogService,
	cart *service.CartService,
	favorites *service.FavoriteService,
	orders *service.OrderService,
	checkout *service.CheckoutService,
) *Handler {
	return &Handler{
		sessions:  sessions,
		catalog:   catalog,
		cart:      cart,
		favorites: favorites,
		orders:    orders,
		checkout:  checkout,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.sessions.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapSession(sess, true))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSession(sess, true))
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context(), middlewares.Session(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapSession(middlewares.Session(r.Context()), false))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = mapCategory(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var filter entity.ProductFilter
	q := r.URL.Query()
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "category_id must be an integer")
			return
		}
		filter.CategoryID = id
	}
	if v := q.Get("flash_sale"); v != "" {
		only, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "flash_sale must be a boolean")
			return
		}
		filter.FlashSaleOnly = only
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProducts(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(product))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.GetCart(r.Context(), middlewares.Session(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

// AddCartItem adds quantity (default 1) to the caller's line for the product.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.cart.AddOrIncrement(r.Context(), middlewares.Session(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if line == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLine(line))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !decode(w, r, &req) {
		return
	}

	line, err := h.cart.SetQuantity(r.Context(), middlewares.Session(r.Context()), id, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if line == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLine(line))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.cart.RemoveLine(r.Context(), middlewares.Session(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout places an order from the caller's cart. The saga runs detached from
// the request's cancellation so a dropped connection cannot stop it halfway.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	result, err := h.checkout.CheckoutCart(ctx, middlewares.Session(ctx), service.CheckoutOptions{
		IdempotencyKey: middlewares.IdempotencyKey(ctx),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := CheckoutResponse{
		OrderID:    result.OrderID,
		CheckoutID: result.CheckoutID,
		Total:      result.Total,
		Replayed:   result.Replayed,
	}
	if result.Order != nil {
		resp.Order = mapOrder(result.Order)
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), middlewares.Session(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrder(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(r.Context(), middlewares.Session(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.favorites.List(r.Context(), middlewares.Session(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]FavoriteResponse, len(favs))
	for i, f := range favs {
		out[i] = mapFavorite(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if !decode(w, r, &req) {
		return
	}
	fav, err := h.favorites.Add(r.Context(), middlewares.Session(r.Context()), req.ProductID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapFavorite(*fav))
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	isFav, err := h.favorites.Toggle(r.Context(), middlewares.Session(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleFavoriteResponse{ProductID: id, IsFavorite: isFav})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	if err := h.favorites.Remove(r.Context(), middlewares.Session(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", fmt.Sprintf("%s must be a positive integer", param))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
