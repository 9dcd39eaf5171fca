package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/INOCcent-afk/productly-server/internal/service"
	"github.com/INOCcent-afk/productly-server/pkg/httputil"
	"github.com/INOCcent-afk/productly-server/pkg/middleware"
	"github.com/INOCcent-afk/productly-server/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// ReviewRequest is the JSON request body for creating or updating a review.
// The message may be empty for a rating-only review; the rating is an
// integer clamped nowhere, rejected outside [1,5].
type ReviewRequest struct {
	Message string `json:"review_message"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// ByProduct handles GET /api/v1/productly/product/{id}/reviews
func (h *ReviewHandler) ByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	result, err := h.service.ProductReviews(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.SuccessWithResults(len(result.Reviews), result))
}

// Add handles POST /api/v1/productly/product/{id}/{productId}/addReview
// The path's first segment is the reviewer's user id and must match the token.
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ReviewRequest
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

	review, err := h.service.Create(r.Context(), callerID, service.CreateReviewInput{
		ProductID: chi.URLParam(r, "productId"),
		UserID:    chi.URLParam(r, "id"),
		Message:   req.Message,
		Rating:    req.Rating,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Success(map[string]any{
		"review": review,
	}))
}

// Update handles PUT /api/v1/productly/product/{id}/updateReview
// The path id is the review id; the caller must be its author.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ReviewRequest
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
	reviewID := chi.URLParam(r, "id")

	review, err := h.service.Update(r.Context(), callerID, reviewID, req.Message, req.Rating)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(map[string]any{
		"review": review,
	}))
}

// Delete handles DELETE /api/v1/productly/product/{id}/deleteReview
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	reviewID := chi.URLParam(r, "id")

	review, err := h.service.Delete(r.Context(), callerID, reviewID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(map[string]any{
		"review": review,
	}))
}
