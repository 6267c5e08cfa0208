package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/zhaoeryu/eu-authd/internal/models"
	"github.com/zhaoeryu/eu-authd/internal/services"
	pkghttp "github.com/zhaoeryu/eu-authd/pkg/http"
)

// LoginServiceInterface defines the interface for the login flow
type LoginServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (string, error)
}

// ChallengeServiceInterface defines the interface for challenge issuance
type ChallengeServiceInterface interface {
	Issue(ctx context.Context) (*services.Challenge, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	login      LoginServiceInterface
	challenges ChallengeServiceInterface
	ipConfig   *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(login LoginServiceInterface, challenges ChallengeServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		login:      login,
		challenges: challenges,
		ipConfig:   ipConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"` // RSA-encrypted, base64
	UUID     string `json:"uuid" validate:"required,uuid4"`
	Code     string `json:"code" validate:"required,len=6"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
}

// ChallengeResponse carries a freshly issued login challenge. Rendering the
// code for the user is the client's concern.
type ChallengeResponse struct {
	UUID      string `json:"uuid"`
	Code      string `json:"code"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login handles a login attempt
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	token, err := h.login.Login(r.Context(), services.LoginRequest{
		Username:      req.Username,
		Password:      req.Password,
		ChallengeID:   req.UUID,
		ChallengeCode: req.Code,
		ClientIP:      pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent:     r.Header.Get("User-Agent"),
	})
	if err != nil {
		writeLoginError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}

// Challenge issues a fresh login challenge
func (h *AuthHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	ch, err := h.challenges.Issue(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ChallengeResponse{
		UUID:      ch.ID,
		Code:      ch.Code,
		ExpiresIn: int64(ch.ExpiresIn.Seconds()),
	})
}

func writeLoginError(w http.ResponseWriter, err error) {
	if locked, ok := models.IsAccountLocked(err); ok {
		pkghttp.WriteTooManyRequests(w, locked.Error())
		return
	}
	switch {
	case errors.Is(err, models.ErrChallengeExpired),
		errors.Is(err, models.ErrChallengeMismatch):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrAccountDisabled),
		errors.Is(err, models.ErrAccountDeleted):
		pkghttp.WriteUnauthorized(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
