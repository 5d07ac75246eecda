package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Authenticate(handler.sessions))

	r.Get("/health", handler.Health)

	r.Post("/auth/signup", handler.SignUp)
	r.Post("/auth/signin", handler.SignIn)

	r.Get("/categories", handler.ListCategories)
	r.Get("/products", handler.ListProducts)
	r.Get("/products/search", handler.SearchProducts)
	r.Get("/products/{id}", handler.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireSession)

		r.Post("/auth/signout", handler.SignOut)
		r.Get("/auth/me", handler.Me)

		r.Get("/cart", handler.GetCart)
		r.Post("/cart/items", handler.AddCartItem)
		r.Patch("/cart/items/{id}", handler.UpdateCartItem)
		r.Delete("/cart/items/{id}", handler.RemoveCartItem)

		r.Post("/checkout", handler.Checkout)

		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrder)

		r.Get("/favorites", handler.ListFavorites)
		r.Post("/favorites", handler.AddFavorite)
		r.Post("/favorites/{productId}/toggle", handler.ToggleFavorite)
		r.Delete("/favorites/{productId}", handler.RemoveFavorite)
	})
	return r
}
