package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/INOCcent-afk/productly-server/internal/domain"
	"github.com/INOCcent-afk/productly-server/internal/service"
	"github.com/INOCcent-afk/productly-server/pkg/httputil"
	"github.com/INOCcent-afk/productly-server/pkg/middleware"
	"github.com/INOCcent-afk/productly-server/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: logger}
}

// ProductRequest is the JSON request body for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"product_name" validate:"required,min=1,max=200"`
	Description *string `json:"product_description"`
	Image       *string `json:"product_image"`
}

// List handles GET /api/v1/productly/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeProducts(w, products)
}

// TopRated handles GET /api/v1/productly/products/top-rated
func (h *ProductHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.TopRated(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeProducts(w, products)
}

// ByUser handles GET /api/v1/productly/products/{userId}
func (h *ProductHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	products, err := h.service.ByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.SuccessWithResults(len(products), map[string]any{
		"products": products,
	}))
}

// Search handles GET /api/v1/productly/products/search/{name}
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	products, err := h.service.Search(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeProducts(w, products)
}

// Detail handles GET /api/v1/productly/product/{id}
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.service.Detail(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(detail))
}

// Add handles POST /api/v1/productly/product/{id}/addProduct
// The path id is the owner's user id and must match the token.
func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorEnvelope{
			Status: "error",
			Error:  &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	ownerID := chi.URLParam(r, "id")

	product, err := h.service.Create(r.Context(), callerID, ownerID, service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Success(map[string]any{
		"product": product,
	}))
}

// Update handles PUT /api/v1/productly/product/{id}/updateProduct
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorEnvelope{
			Status: "error",
			Error:  &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	callerID := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")

	product, err := h.service.Update(r.Context(), callerID, productID, req.Name, req.Description)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(map[string]any{
		"product": product,
	}))
}

// Delete handles DELETE /api/v1/productly/product/{id}/deleteProduct
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	productID := chi.URLParam(r, "id")

	product, err := h.service.Delete(r.Context(), callerID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(map[string]any{
		"product": product,
	}))
}

func writeProducts(w http.ResponseWriter, products []domain.ProductWithRating) {
	httputil.WriteJSON(w, http.StatusOK, httputil.SuccessWithResults(len(products), map[string]any{
		"products": products,
	}))
}
