package handler

import (
	"net/http"

	"github.com/ssoward/evyroad/internal/api/models"
	"github.com/ssoward/evyroad/internal/api/response"
	"github.com/ssoward/evyroad/internal/auth"
)

// AuthHandler issues development access tokens. The endpoint is only
// mounted outside production; real deployments front the API with an
// identity provider.
type AuthHandler struct {
	jwtService *auth.JWTService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var input models.TokenRequest
	if !decode(w, r, &input) {
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(input.UserID)
	if err != nil {
		response.InternalError(w, r, "could not issue token")
		return
	}

	response.JSON(w, r, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   models.Timestamp(expiresAt),
	})
}
