package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/constants"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/service"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/auth"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	gw     *memory.Gateway
	mug    entity.Product
	jacket entity.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gw := memory.NewGateway()
	home := gw.AddCategory(entity.Category{Name: "Home"})
	fashion := gw.AddCategory(entity.Category{Name: "Fashion"})
	mug := gw.AddProduct(entity.Product{Name: "Mug", Price: 10, CategoryID: home.ID, Stock: 5})
	jacket := gw.AddProduct(entity.Product{Name: "Jacket", Price: 50, CategoryID: fashion.ID, Stock: 1, IsFlashSale: true})

	c := cache.NewMemoryCache(constants.ServiceName)
	sessions := auth.NewProvider(gw, c, "test-secret", time.Hour, auth.WithBcryptCost(bcrypt.MinCost))
	handler := NewHandler(
		sessions,
		service.NewCatalogService(gw),
		service.NewCartService(gw),
		service.NewFavoriteService(gw),
		service.NewOrderService(gw),
		service.NewCheckoutService(gw,
			service.WithIdempotencyCache(c, time.Hour),
			service.WithClearCartDelay(0),
		),
	)

	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, gw: gw, mug: mug, jacket: jacket}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *http.Response {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *testServer) signUp(email string) string {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/auth/signup", "", CredentialsRequest{Email: email, Password: "secret123"})
	require.Equal(s.t, http.StatusCreated, resp.StatusCode)
	var out SessionResponse
	decodeBody(s.t, resp, &out)
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(constants.HeaderXRequestId))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/cart", "/orders", "/favorites", "/auth/me"} {
		resp := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := s.do(http.MethodGet, "/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var out ErrorResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "unauthenticated", out.Error)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana@example.com")

	resp := s.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me SessionResponse
	decodeBody(t, resp, &me)
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Empty(t, me.Token)

	resp = s.do(http.MethodPost, "/auth/signup", "", CredentialsRequest{Email: "ANA@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/auth/signin", "", CredentialsRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodPost, "/auth/signout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []CategoryResponse
	decodeBody(t, resp, &categories)
	assert.Len(t, categories, 2)

	resp = s.do(http.MethodGet, "/products?flash_sale=true", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var flash []ProductResponse
	decodeBody(t, resp, &flash)
	require.Len(t, flash, 1)
	assert.Equal(t, "Jacket", flash[0].Name)

	resp = s.do(http.MethodGet, "/products/search?q=mug", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []ProductResponse
	decodeBody(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, s.mug.ID, found[0].ID)

	resp = s.do(http.MethodGet, fmt.Sprintf("/products/%d", s.mug.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var product ProductResponse
	decodeBody(t, resp, &product)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Home", product.Category.Name)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/products/9999", "", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products/abc", "", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/products?category_id=x", "", nil).StatusCode)
}

func TestCartAndCheckout(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana@example.com")

	resp := s.do(http.MethodPost, "/checkout", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(http.MethodPost, "/cart/items", token, AddCartItemRequest{ProductID: s.mug.ID, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var line CartLineResponse
	decodeBody(t, resp, &line)
	assert.Equal(t, 2, line.Quantity)

	resp = s.do(http.MethodPost, "/cart/items", token, AddCartItemRequest{ProductID: s.jacket.ID, Quantity: 2})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(http.MethodPost, "/cart/items", token, AddCartItemRequest{ProductID: s.jacket.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart CartResponse
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 2)
	assert.InDelta(t, 70.0, cart.Total, 0.001)

	resp = s.do(http.MethodPost, "/checkout", token, nil, constants.HeaderXIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var first CheckoutResponse
	decodeBody(t, resp, &first)
	assert.InDelta(t, 70.0, first.Total, 0.001)
	assert.Len(t, first.Order.Items, 2)
	assert.False(t, first.Replayed)

	resp = s.do(http.MethodPost, "/checkout", token, nil, constants.HeaderXIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replay CheckoutResponse
	decodeBody(t, resp, &replay)
	assert.True(t, replay.Replayed)
	assert.Equal(t, first.OrderID, replay.OrderID)
	assert.Equal(t, first.CheckoutID, replay.CheckoutID)

	mug, err := s.gw.GetProduct(context.Background(), s.mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, mug.Stock)

	resp = s.do(http.MethodGet, "/cart", token, nil)
	decodeBody(t, resp, &cart)
	assert.Empty(t, cart.Items)

	resp = s.do(http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []OrderResponse
	decodeBody(t, resp, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, string(entity.StatusProcessing), orders[0].Status)

	other := s.signUp("bob@example.com")
	resp = s.do(http.MethodGet, fmt.Sprintf("/orders/%d", first.OrderID), other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartItemUpdateAndRemove(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana@example.com")

	resp := s.do(http.MethodPost, "/cart/items", token, AddCartItemRequest{ProductID: s.mug.ID, Quantity: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var line CartLineResponse
	decodeBody(t, resp, &line)

	path := fmt.Sprintf("/cart/items/%d", line.ID)
	resp = s.do(http.MethodPatch, path, token, UpdateCartItemRequest{Quantity: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &line)
	assert.Equal(t, 4, line.Quantity)

	other := s.signUp("bob@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, other, nil).StatusCode)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPatch, path, token, UpdateCartItemRequest{Quantity: 0}).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, token, nil).StatusCode)
}

func TestFavoriteRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana@example.com")
	togglePath := fmt.Sprintf("/favorites/%d/toggle", s.mug.ID)

	resp := s.do(http.MethodPost, togglePath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled ToggleFavoriteResponse
	decodeBody(t, resp, &toggled)
	assert.True(t, toggled.IsFavorite)

	resp = s.do(http.MethodPost, "/favorites", token, FavoriteRequest{ProductID: s.mug.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/favorites", token, FavoriteRequest{ProductID: s.jacket.ID})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(http.MethodGet, "/favorites", token, nil)
	var favs []FavoriteResponse
	decodeBody(t, resp, &favs)
	assert.Len(t, favs, 2)

	resp = s.do(http.MethodDelete, fmt.Sprintf("/favorites/%d", s.jacket.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodPost, togglePath, token, nil)
	decodeBody(t, resp, &toggled)
	assert.False(t, toggled.IsFavorite)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("product 9: %w", entity.ErrNotFound), http.StatusNotFound, "not_found"},
		{"empty cart", &entity.CheckoutError{Kind: entity.ErrEmptyCart}, http.StatusUnprocessableEntity, "empty_cart"},
		{"insufficient stock", entity.InsufficientStock("Mug"), http.StatusUnprocessableEntity, "insufficient_stock"},
		{"step kind wins over cause", &entity.CheckoutError{Kind: entity.ErrStockUpdateFailed, Err: entity.ErrNotFound}, http.StatusBadGateway, "stock_update_failed"},
		{"in progress", entity.ErrCheckoutInProgress, http.StatusConflict, "checkout_in_progress"},
		{"quantity", entity.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
