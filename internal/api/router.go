package api

import (
	"net/http"

	"github.com/example/ec-shop/internal/api/middleware"
	"github.com/example/ec-shop/internal/auth"
	"github.com/example/ec-shop/internal/domain/user"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)

	// Public
	r.Post("/auth/register", cfg.AuthHandlers.Register)
	r.Post("/auth/login", cfg.AuthHandlers.Login)
	r.Get("/products", cfg.Handlers.GetProducts)
	r.Get("/products/{model}", cfg.Handlers.GetProduct)

	// Customer cart routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTService))

		r.Get("/cart", cfg.Handlers.GetCart)
		r.Delete("/cart", cfg.Handlers.ClearCart)
		r.Post("/cart/items", cfg.Handlers.AddToCart)
		r.Delete("/cart/items/{model}", cfg.Handlers.RemoveFromCart)
		r.Post("/cart/checkout", cfg.Handlers.CheckoutCart)
		r.Get("/cart/history", cfg.Handlers.GetCartHistory)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTService))
		r.Use(middleware.RequireRole(user.RoleAdmin))

		r.Post("/products", cfg.Handlers.CreateProduct)
		r.Delete("/products/{model}", cfg.Handlers.DeleteProduct)
		r.Patch("/products/{model}/quantity", cfg.Handlers.ChangeProductQuantity)
		r.Post("/products/{model}/sell", cfg.Handlers.SellProduct)

		r.Get("/admin/carts", cfg.Handlers.GetAllCarts)
		r.Delete("/admin/carts", cfg.Handlers.DeleteAllCarts)
	})

	return r
}
