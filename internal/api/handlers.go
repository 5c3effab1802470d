package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/ec-shop/internal/api/middleware"
	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	catalogSvc *catalog.Service
	cartSvc    *cart.Service
}

func NewHandlers(catalogSvc *catalog.Service, cartSvc *cart.Service) *Handlers {
	return &Handlers{
		catalogSvc: catalogSvc,
		cartSvc:    cartSvc,
	}
}

// Product Handlers

type createProductRequest struct {
	Model        string          `json:"model"`
	Category     string          `json:"category"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	ArrivalDate  string          `json:"arrivalDate"`
	Details      string          `json:"details"`
	Quantity     int             `json:"quantity"`
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		respondError(w, "model is required", http.StatusBadRequest)
		return
	}

	arrival := time.Now()
	if req.ArrivalDate != "" {
		parsed, err := time.Parse(dateLayout, req.ArrivalDate)
		if err != nil {
			respondError(w, "arrivalDate must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		arrival = parsed
	}

	p := &catalog.Product{
		Model:        req.Model,
		Category:     catalog.Category(req.Category),
		SellingPrice: req.SellingPrice,
		ArrivalDate:  arrival,
		Details:      req.Details,
		Quantity:     req.Quantity,
	}
	if err := h.catalogSvc.Register(r.Context(), p); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogSvc.ListProducts(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	p, err := h.catalogSvc.GetProduct(r.Context(), model)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	if err := h.catalogSvc.Delete(r.Context(), model); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

func (h *Handlers) ChangeProductQuantity(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.catalogSvc.ChangeQuantity(r.Context(), model, req.Delta); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

func (h *Handlers) SellProduct(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.catalogSvc.Sell(r.Context(), model, req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.cartSvc.GetCart(r.Context(), getUsername(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		respondError(w, "model is required", http.StatusBadRequest)
		return
	}

	if err := h.cartSvc.AddToCart(r.Context(), getUsername(r), req.Model); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	if err := h.cartSvc.RemoveProduct(r.Context(), getUsername(r), model); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

func (h *Handlers) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartSvc.CheckoutCart(r.Context(), getUsername(r)); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartSvc.Clear(r.Context(), getUsername(r)); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

func (h *Handlers) GetCartHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.cartSvc.History(r.Context(), getUsername(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// Admin Handlers

func (h *Handlers) GetAllCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := h.cartSvc.GetAllCarts(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, carts)
}

func (h *Handlers) DeleteAllCarts(w http.ResponseWriter, r *http.Request) {
	if err := h.cartSvc.DeleteAllCarts(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, true)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain errors onto HTTP status codes; anything
// unrecognized is a 500.
func respondDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrProductNotInCart):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrEmptyStock),
		errors.Is(err, catalog.ErrLowStock),
		errors.Is(err, catalog.ErrProductAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidArrivalDate),
		errors.Is(err, catalog.ErrInvalidQuantity):
		status = http.StatusBadRequest
	}
	respondError(w, err.Error(), status)
}

// getUsername extracts the customer identity from the JWT context, falling
// back to the X-User header for unauthenticated test traffic.
func getUsername(r *http.Request) string {
	if username := middleware.GetUsername(r.Context()); username != "" {
		return username
	}
	return r.Header.Get("X-User")
}
