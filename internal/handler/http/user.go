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

// maxBodyBytes caps request bodies. Generous because profile updates may
// carry a base64 data-URI image inline, as the original clients do.
const maxBodyBytes = 50 << 20

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// EditProfileRequest is the JSON request body for a partial profile update.
// Absent fields keep their stored values.
type EditProfileRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	BioDescription *string `json:"bio_description"`
	DisplayPicture *string `json:"display_picture"`
	CoverPhoto     *string `json:"cover_photo"`
}

// List handles GET /api/v1/productly/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.SuccessWithResults(len(users), map[string]any{
		"users": users,
	}))
}

// Get handles GET /api/v1/productly/user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	profile, err := h.service.Profile(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(profile))
}

// Search handles GET /api/v1/productly/user/search/{name}
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	users, err := h.service.Search(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.SuccessWithResults(len(users), map[string]any{
		"users": users,
	}))
}

// EditProfile handles PUT /api/v1/productly/user/{id}/edit-profile
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req EditProfileRequest
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
	targetID := chi.URLParam(r, "id")

	user, err := h.service.UpdateProfile(r.Context(), callerID, targetID, service.UpdateProfileInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BioDescription: req.BioDescription,
		DisplayPicture: req.DisplayPicture,
		CoverPhoto:     req.CoverPhoto,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(map[string]any{
		"user": user,
	}))
}
