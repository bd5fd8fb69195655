package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/logging"
	"github.com/dkazakov/taskdeck/internal/server/models"
	"github.com/dkazakov/taskdeck/internal/server/services"
)

// AuthService is the slice of the user service the auth handlers need.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	service AuthService
	logger  logging.Logger
}

func NewAuthHandler(service AuthService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates an account. No tokens are issued; the client logs in as a
// separate step.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, common.ErrorValidation)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug(r.Context(), "registration rejected", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"userId":  user.ID,
	})
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, common.ErrorInvalidCredentials)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh exchanges a valid refresh token for a new token pair. A missing
// token is 401; an unverifiable one is 403.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeServiceError(w, common.ErrMissingToken)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout acknowledges the request. Tokens are stateless, so there is nothing
// to revoke server side; clients discard their copies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
