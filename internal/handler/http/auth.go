package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/INOCcent-afk/productly-server/internal/service"
	"github.com/INOCcent-afk/productly-server/pkg/httputil"
	"github.com/INOCcent-afk/productly-server/pkg/validator"
)

// AuthHandler handles HTTP requests for signup, login, and token verification.
type AuthHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for user registration.
type SignupRequest struct {
	FirstName      string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName       string  `json:"last_name" validate:"required,min=1,max=100"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	CoverPhoto     *string `json:"cover_photo"`
	DisplayPicture *string `json:"display_picture"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	JWTToken string `json:"jwtToken"`
}

// LoginResponse carries a freshly issued access token with the user.
type LoginResponse struct {
	JWTToken string `json:"jwtToken"`
	User     any    `json:"user"`
}

// --- Handlers ---

// Signup handles POST /api/v1/productly/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SignupRequest
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

	token, err := h.service.Signup(r.Context(), service.SignupInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		CoverPhoto:     req.CoverPhoto,
		DisplayPicture: req.DisplayPicture,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Success(TokenResponse{JWTToken: token}))
}

// Login handles POST /api/v1/productly/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req LoginRequest
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

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Success(LoginResponse{JWTToken: token, User: user}))
}

// Verify handles POST /api/v1/productly/verify
// Reaching the handler at all means the auth middleware accepted the token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Success(true))
}
