package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/chainsafe/primary-sale-minter/pkg/app/errors"
	apphttp "github.com/chainsafe/primary-sale-minter/pkg/app/http"
)

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRoutes mounts POST /auth/token, which exchanges a signed request for
// a bearer token valid for ttl. Nothing is mounted when tokens is disabled.
func RegisterRoutes(r chi.Router, tokens *TokenService, ttl time.Duration) {
	if !tokens.Enabled() {
		return
	}
	r.Post("/auth/token", apphttp.HandleError(func(w http.ResponseWriter, r *http.Request) error {
		caller, ok := CallerFromContext(r.Context())
		if !ok || caller.Method != MethodSignature {
			return apperrors.UnAuthorizedError(nil, "signed request required")
		}
		token, err := tokens.Issue(caller.Address, ttl)
		if err != nil {
			return apperrors.GeneralError(err)
		}
		return apphttp.WriteJSON(w, http.StatusOK, &TokenResponse{
			Token:     token,
			Address:   caller.Address.Hex(),
			ExpiresAt: tokens.now().Add(ttl).UTC(),
		})
	}))
}
